// Package memstore is an in-process storage backend with the same transactional contract as the
// PostgreSQL one: per-slot locks held until the transaction ends, writes staged and applied
// atomically on commit, and the one-active-hold-per-slot rule re-checked at commit time.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type Store struct {
	mu     sync.RWMutex
	slots  map[string]*slot.Slot
	occ    map[string]*occupancy.Record
	holds  map[uuid.UUID]*hold.Hold
	active map[string]uuid.UUID // slot id -> holding/confirmed hold id
	events []*event.Event

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	return &Store{
		slots:  make(map[string]*slot.Slot),
		occ:    make(map[string]*occupancy.Record),
		holds:  make(map[uuid.UUID]*hold.Hold),
		active: make(map[string]uuid.UUID),
		locks:  make(map[string]chan struct{}),
		logger: logger,
	}
}

func (s *Store) slotLock(slotID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[slotID]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[slotID] = l
	}
	return l
}

type UoW struct {
	store *Store
}

func NewUoW(store *Store) shared.UnitOfWork {
	return &UoW{store: store}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	t := newTx(u.store, false)
	defer t.release()

	if err := fn(ctx, t); err != nil {
		return err
	}
	return t.commit()
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	t := newTx(u.store, true)
	defer t.release()
	return fn(ctx, t)
}

type tx struct {
	store    *Store
	readOnly bool
	held     map[string]chan struct{}

	slots    map[string]*slot.Slot
	newSlots map[string]bool
	occ      map[string]*occupancy.Record
	newOcc   map[string]bool
	holds    map[uuid.UUID]*hold.Hold
	newHolds map[uuid.UUID]bool
	events   []*event.Event
}

func newTx(store *Store, readOnly bool) *tx {
	return &tx{
		store:    store,
		readOnly: readOnly,
		held:     make(map[string]chan struct{}),
		slots:    make(map[string]*slot.Slot),
		newSlots: make(map[string]bool),
		occ:      make(map[string]*occupancy.Record),
		newOcc:   make(map[string]bool),
		holds:    make(map[uuid.UUID]*hold.Hold),
		newHolds: make(map[uuid.UUID]bool),
	}
}

func (t *tx) Slots() shared.SlotRepository          { return slotRepo{t} }
func (t *tx) Occupancy() shared.OccupancyRepository { return occupancyRepo{t} }
func (t *tx) Holds() shared.HoldRepository          { return holdRepo{t} }
func (t *tx) Events() shared.EventRepository        { return eventRepo{t} }

// lock blocks until the slot lock is free or ctx is done. Re-entrant within one tx.
func (t *tx) lock(ctx context.Context, slotID string) error {
	if t.readOnly {
		return nil
	}
	if _, ok := t.held[slotID]; ok {
		return nil
	}
	l := t.store.slotLock(slotID)
	select {
	case l <- struct{}{}:
		t.held[slotID] = l
		return nil
	case <-ctx.Done():
		return infra.WrapRepoErr(t.store.logger, infra.KindDBFailure, "slot lock wait aborted", ctx.Err())
	}
}

func (t *tx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

func (t *tx) writable() error {
	if t.readOnly {
		return infra.WrapRepoErr(t.store.logger, infra.KindDBFailure, "write in read-only transaction", nil)
	}
	return nil
}

func (t *tx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.newSlots {
		if _, exists := s.slots[id]; exists {
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "slot already exists", nil)
		}
	}
	if err := t.checkActiveUnique(); err != nil {
		return err
	}

	for id, sl := range t.slots {
		s.slots[id] = sl
	}
	for id, rec := range t.occ {
		s.occ[id] = rec
	}
	for id, h := range t.holds {
		s.holds[id] = h
		if h.Status().IsActive() {
			s.active[h.SlotID()] = id
		} else if s.active[h.SlotID()] == id {
			delete(s.active, h.SlotID())
		}
	}
	for _, e := range t.events {
		e.Seq = int64(len(s.events)) + 1
		s.events = append(s.events, cloneEvent(e))
	}
	return nil
}

// checkActiveUnique mirrors the partial unique index on holds(slot_id). Caller holds s.mu.
func (t *tx) checkActiveUnique() error {
	s := t.store
	staged := make(map[string]uuid.UUID)
	for id, h := range t.holds {
		if !h.Status().IsActive() {
			continue
		}
		if other, dup := staged[h.SlotID()]; dup && other != id {
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "slot already has an active hold", nil)
		}
		staged[h.SlotID()] = id

		current, ok := s.active[h.SlotID()]
		if !ok || current == id {
			continue
		}
		if p, overridden := t.holds[current]; overridden && !p.Status().IsActive() {
			continue
		}
		return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "slot already has an active hold", nil)
	}
	return nil
}

func cloneEvent(e *event.Event) *event.Event {
	c := *e
	c.Meta = make(map[string]any, len(e.Meta))
	for k, v := range e.Meta {
		c.Meta[k] = v
	}
	return &c
}
