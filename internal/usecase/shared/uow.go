package shared

import (
	"context"
	"time"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic. All writes made through tx
	// commit together or not at all.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Consistent multi-table reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Slots() SlotRepository
	Occupancy() OccupancyRepository
	Holds() HoldRepository
	Events() EventRepository
}

type SlotRepository interface {
	Create(ctx context.Context, s *slot.Slot) error
	Update(ctx context.Context, s *slot.Slot) error
	FindByID(ctx context.Context, id string) (*slot.Slot, error)
	List(ctx context.Context, filter SlotFilter) ([]*slot.Slot, error)
}

type OccupancyRepository interface {
	Create(ctx context.Context, rec *occupancy.Record) error
	FindBySlotID(ctx context.Context, slotID string) (*occupancy.Record, error)
	// FindBySlotIDForUpdate takes the per-slot lock, held until the transaction ends.
	// Every hold write path calls it before touching the slot's holds.
	FindBySlotIDForUpdate(ctx context.Context, slotID string) (*occupancy.Record, error)
	List(ctx context.Context, slotIDs []string) ([]*occupancy.Record, error)
	Save(ctx context.Context, rec *occupancy.Record) error
	SetReservedUntil(ctx context.Context, slotID string, until *time.Time, now time.Time) error
	// ClearStaleReservations clears past reserved_until values no active hold backs.
	ClearStaleReservations(ctx context.Context, now time.Time) (int64, error)
}

type HoldRepository interface {
	Create(ctx context.Context, h *hold.Hold) error
	FindByID(ctx context.Context, id uuid.UUID) (*hold.Hold, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error)
	// FindActiveBySlot returns the holding/confirmed hold of the slot, or nil when there is none.
	FindActiveBySlot(ctx context.Context, slotID string) (*hold.Hold, error)
	FindActiveBySlots(ctx context.Context, slotIDs []string) (map[string]*hold.Hold, error)
	UpdateStatus(ctx context.Context, h *hold.Hold) error
	ListStale(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	ListConfirmed(ctx context.Context) ([]*hold.Hold, error)
}

type EventRepository interface {
	// Append sets e.Seq once the log has assigned it.
	Append(ctx context.Context, e *event.Event) error
	List(ctx context.Context, filter EventFilter) ([]*event.Event, error)
}
