package queries

import (
	"context"

	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/usecase/shared"
)

type SlotQueries interface {
	GetSlot(ctx context.Context, slotID string) (*SlotView, error)
	ListSlots(ctx context.Context, zoneID *string) ([]*SlotView, error)
	GetOccupancy(ctx context.Context, slotID string) (*OccupancyView, error)
}

type slotQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewSlotQueries(uow shared.UnitOfWork) SlotQueries {
	return &slotQueriesImpl{uow: uow}
}

func (q *slotQueriesImpl) GetSlot(ctx context.Context, slotID string) (*SlotView, error) {
	s, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) (*slot.Slot, error) {
		return tx.Slots().FindByID(ctx, slotID)
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	return ToSlotView(s), nil
}

func (q *slotQueriesImpl) ListSlots(ctx context.Context, zoneID *string) ([]*SlotView, error) {
	slots, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) ([]*slot.Slot, error) {
		return tx.Slots().List(ctx, shared.SlotFilter{ZoneID: zoneID})
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "zone", ptrOrEmpty(zoneID))
	}
	views := make([]*SlotView, len(slots))
	for i, s := range slots {
		views[i] = ToSlotView(s)
	}
	return views, nil
}

func (q *slotQueriesImpl) GetOccupancy(ctx context.Context, slotID string) (*OccupancyView, error) {
	rec, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) (*occupancy.Record, error) {
		return tx.Occupancy().FindBySlotID(ctx, slotID)
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	return ToOccupancyView(rec), nil
}

func ToSlotView(s *slot.Slot) *SlotView {
	return &SlotView{
		ID:              s.ID(),
		ZoneID:          s.ZoneID(),
		Polygon:         s.Polygon(),
		VehicleTypeHint: s.VehicleTypeHint(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}

func ToOccupancyView(rec *occupancy.Record) *OccupancyView {
	return &OccupancyView{
		SlotID:               rec.SlotID,
		Occupied:             rec.Occupied,
		Confidence:           rec.Confidence,
		VehicleType:          rec.VehicleType,
		LastSeen:             rec.LastSeen,
		ReservedUntil:        rec.ReservedUntil,
		PredictedFreeMinutes: rec.PredictedFreeMinutes,
		PredictionConfidence: rec.PredictionConfidence,
		UpdatedAt:            rec.UpdatedAt,
	}
}
