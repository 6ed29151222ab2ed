package memstore

import (
	"context"
	"sort"
	"time"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/pkg/ptr"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// slots
// ---------------------------------------------------------------------------

type slotRepo struct{ t *tx }

func (r slotRepo) Create(_ context.Context, s *slot.Slot) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	if existing, _ := r.t.slot(s.ID()); existing != nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindDuplicateKey, "slot already exists", nil)
	}
	r.t.slots[s.ID()] = cloneSlot(s)
	r.t.newSlots[s.ID()] = true
	return nil
}

func (r slotRepo) Update(_ context.Context, s *slot.Slot) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	if existing, _ := r.t.slot(s.ID()); existing == nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "slot not found", nil)
	}
	r.t.slots[s.ID()] = cloneSlot(s)
	return nil
}

func (r slotRepo) FindByID(_ context.Context, id string) (*slot.Slot, error) {
	s, _ := r.t.slot(id)
	if s == nil {
		return nil, infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "slot not found", nil)
	}
	return cloneSlot(s), nil
}

func (r slotRepo) List(_ context.Context, filter shared.SlotFilter) ([]*slot.Slot, error) {
	r.t.store.mu.RLock()
	merged := make(map[string]*slot.Slot, len(r.t.store.slots)+len(r.t.slots))
	for id, s := range r.t.store.slots {
		merged[id] = s
	}
	r.t.store.mu.RUnlock()
	for id, s := range r.t.slots {
		merged[id] = s
	}

	out := make([]*slot.Slot, 0, len(merged))
	for _, s := range merged {
		if filter.ZoneID != nil && s.ZoneID() != *filter.ZoneID {
			continue
		}
		out = append(out, cloneSlot(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (t *tx) slot(id string) (*slot.Slot, bool) {
	if s, ok := t.slots[id]; ok {
		return s, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.slots[id], false
}

func cloneSlot(s *slot.Slot) *slot.Slot {
	return slot.ReconstructSlot(s.ID(), s.ZoneID(), s.Polygon(), s.VehicleTypeHint(), s.CreatedAt(), s.UpdatedAt())
}

// ---------------------------------------------------------------------------
// occupancy
// ---------------------------------------------------------------------------

type occupancyRepo struct{ t *tx }

func (r occupancyRepo) Create(_ context.Context, rec *occupancy.Record) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	if existing := r.t.record(rec.SlotID); existing != nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindDuplicateKey, "occupancy record already exists", nil)
	}
	if s, _ := r.t.slot(rec.SlotID); s == nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindForeignKeyViolated, "occupancy record references unknown slot", nil)
	}
	r.t.occ[rec.SlotID] = rec.Clone()
	r.t.newOcc[rec.SlotID] = true
	return nil
}

func (r occupancyRepo) FindBySlotID(_ context.Context, slotID string) (*occupancy.Record, error) {
	rec := r.t.record(slotID)
	if rec == nil {
		return nil, infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "occupancy record not found", nil)
	}
	return rec.Clone(), nil
}

func (r occupancyRepo) FindBySlotIDForUpdate(ctx context.Context, slotID string) (*occupancy.Record, error) {
	if r.t.record(slotID) == nil {
		return nil, infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "occupancy record not found", nil)
	}
	if err := r.t.lock(ctx, slotID); err != nil {
		return nil, err
	}
	// Re-read: the previous lock holder may have committed changes
	return r.FindBySlotID(ctx, slotID)
}

func (r occupancyRepo) List(_ context.Context, slotIDs []string) ([]*occupancy.Record, error) {
	out := make([]*occupancy.Record, 0, len(slotIDs))
	for _, id := range slotIDs {
		if rec := r.t.record(id); rec != nil {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}

func (r occupancyRepo) Save(_ context.Context, rec *occupancy.Record) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	if r.t.record(rec.SlotID) == nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "occupancy record not found", nil)
	}
	r.t.occ[rec.SlotID] = rec.Clone()
	return nil
}

func (r occupancyRepo) SetReservedUntil(_ context.Context, slotID string, until *time.Time, now time.Time) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	rec := r.t.record(slotID)
	if rec == nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "occupancy record not found", nil)
	}
	next := rec.Clone()
	if until != nil {
		u := *until
		next.ReservedUntil = &u
	} else {
		next.ReservedUntil = nil
	}
	next.UpdatedAt = now
	r.t.occ[slotID] = next
	return nil
}

func (r occupancyRepo) ClearStaleReservations(ctx context.Context, now time.Time) (int64, error) {
	if err := r.t.writable(); err != nil {
		return 0, err
	}

	r.t.store.mu.RLock()
	candidates := make([]string, 0)
	for id, rec := range r.t.store.occ {
		if rec.ReservedUntil != nil && rec.ReservedUntil.Before(now) {
			candidates = append(candidates, id)
		}
	}
	r.t.store.mu.RUnlock()
	// Fixed order so two concurrent sweeps cannot deadlock
	sort.Strings(candidates)

	var cleared int64
	for _, id := range candidates {
		if err := r.t.lock(ctx, id); err != nil {
			return cleared, err
		}
		rec := r.t.record(id)
		if rec == nil || rec.ReservedUntil == nil || !rec.ReservedUntil.Before(now) {
			continue
		}
		if h := r.t.activeHold(id); h != nil {
			continue
		}
		if err := r.SetReservedUntil(ctx, id, nil, now); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

func (t *tx) record(slotID string) *occupancy.Record {
	if rec, ok := t.occ[slotID]; ok {
		return rec
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.occ[slotID]
}

// ---------------------------------------------------------------------------
// holds
// ---------------------------------------------------------------------------

type holdRepo struct{ t *tx }

func (r holdRepo) Create(_ context.Context, h *hold.Hold) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	if s, _ := r.t.slot(h.SlotID()); s == nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindForeignKeyViolated, "hold references unknown slot", nil)
	}
	if h.Status().IsActive() && r.t.activeHold(h.SlotID()) != nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindDuplicateKey, "slot already has an active hold", nil)
	}
	r.t.holds[h.ID()] = h.Clone()
	r.t.newHolds[h.ID()] = true
	return nil
}

func (r holdRepo) FindByID(_ context.Context, id uuid.UUID) (*hold.Hold, error) {
	h := r.t.hold(id)
	if h == nil {
		return nil, infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "hold not found", nil)
	}
	return h.Clone(), nil
}

func (r holdRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	h := r.t.hold(id)
	if h == nil {
		return nil, infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "hold not found", nil)
	}
	if err := r.t.lock(ctx, h.SlotID()); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r holdRepo) FindActiveBySlot(_ context.Context, slotID string) (*hold.Hold, error) {
	h := r.t.activeHold(slotID)
	if h == nil {
		return nil, nil
	}
	return h.Clone(), nil
}

func (r holdRepo) FindActiveBySlots(_ context.Context, slotIDs []string) (map[string]*hold.Hold, error) {
	out := make(map[string]*hold.Hold, len(slotIDs))
	for _, id := range slotIDs {
		if h := r.t.activeHold(id); h != nil {
			out[id] = h.Clone()
		}
	}
	return out, nil
}

func (r holdRepo) UpdateStatus(_ context.Context, h *hold.Hold) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	if r.t.hold(h.ID()) == nil {
		return infra.WrapRepoErr(r.t.store.logger, infra.KindNotFound, "hold not found", nil)
	}
	r.t.holds[h.ID()] = h.Clone()
	return nil
}

func (r holdRepo) ListStale(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	r.t.store.mu.RLock()
	stale := make([]*hold.Hold, 0)
	for _, h := range r.t.store.holds {
		if h.IsStale(now) {
			stale = append(stale, h)
		}
	}
	r.t.store.mu.RUnlock()

	sort.Slice(stale, func(i, j int) bool { return stale[i].HoldUntil().Before(stale[j].HoldUntil()) })
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	ids := make([]uuid.UUID, len(stale))
	for i, h := range stale {
		ids[i] = h.ID()
	}
	return ids, nil
}

func (r holdRepo) ListConfirmed(_ context.Context) ([]*hold.Hold, error) {
	r.t.store.mu.RLock()
	out := make([]*hold.Hold, 0)
	for _, h := range r.t.store.holds {
		if h.Status() == hold.StatusConfirmed {
			out = append(out, h.Clone())
		}
	}
	r.t.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return ptr.Or(out[i].ConfirmedAt(), time.Time{}).Before(ptr.Or(out[j].ConfirmedAt(), time.Time{}))
	})
	return out, nil
}

func (t *tx) hold(id uuid.UUID) *hold.Hold {
	if h, ok := t.holds[id]; ok {
		return h
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.holds[id]
}

// activeHold resolves the slot's active hold, letting staged writes shadow committed state.
func (t *tx) activeHold(slotID string) *hold.Hold {
	for _, h := range t.holds {
		if h.SlotID() == slotID && h.Status().IsActive() {
			return h
		}
	}
	t.store.mu.RLock()
	id, ok := t.store.active[slotID]
	t.store.mu.RUnlock()
	if !ok {
		return nil
	}
	if staged, overridden := t.holds[id]; overridden && !staged.Status().IsActive() {
		return nil
	}
	return t.hold(id)
}

// ---------------------------------------------------------------------------
// events
// ---------------------------------------------------------------------------

type eventRepo struct{ t *tx }

func (r eventRepo) Append(_ context.Context, e *event.Event) error {
	if err := r.t.writable(); err != nil {
		return err
	}
	// Seq is assigned on commit; keep the caller's pointer so it observes it
	r.t.events = append(r.t.events, e)
	return nil
}

func (r eventRepo) List(_ context.Context, filter shared.EventFilter) ([]*event.Event, error) {
	filter = filter.Normalize()

	r.t.store.mu.RLock()
	defer r.t.store.mu.RUnlock()

	out := make([]*event.Event, 0, filter.Limit)
	// Seq n lives at index n-1
	for i := int(filter.AfterSeq); i < len(r.t.store.events) && len(out) < filter.Limit; i++ {
		e := r.t.store.events[i]
		if filter.SlotID != nil && e.SlotID != *filter.SlotID {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	return out, nil
}
