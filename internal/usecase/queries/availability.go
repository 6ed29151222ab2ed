package queries

import (
	"context"
	"log/slog"
	"time"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type AvailabilityQueries interface {
	GetSlotAvailability(ctx context.Context, slotID string) (*AvailabilityView, error)
	ListAvailability(ctx context.Context, zoneID *string) ([]*AvailabilityView, error)
}

type availabilityQueriesImpl struct {
	uow       shared.UnitOfWork
	expirer   Expirer
	clock     clock.Clock
	threshold float64
	logger    *slog.Logger
}

func NewAvailabilityQueries(
	uow shared.UnitOfWork,
	expirer Expirer,
	clk clock.Clock,
	occupancyThreshold float64,
	logger *slog.Logger,
) AvailabilityQueries {
	return &availabilityQueriesImpl{
		uow:       uow,
		expirer:   expirer,
		clock:     clk,
		threshold: occupancyThreshold,
		logger:    logger,
	}
}

type slotSnapshot struct {
	slot   *slot.Slot
	record *occupancy.Record
	active *hold.Hold
}

func (q *availabilityQueriesImpl) GetSlotAvailability(ctx context.Context, slotID string) (*AvailabilityView, error) {
	snap, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) (*slotSnapshot, error) {
		s, err := tx.Slots().FindByID(ctx, slotID)
		if err != nil {
			return nil, err
		}
		rec, err := tx.Occupancy().FindBySlotID(ctx, slotID)
		if err != nil {
			return nil, err
		}
		active, err := tx.Holds().FindActiveBySlot(ctx, slotID)
		if err != nil {
			return nil, err
		}
		return &slotSnapshot{slot: s, record: rec, active: active}, nil
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}

	now := q.clock.Now()
	view, stale := q.buildView(snap, now)
	if stale != nil {
		expireQuietly(ctx, q.expirer, q.logger, []uuid.UUID{*stale})
	}
	return view, nil
}

func (q *availabilityQueriesImpl) ListAvailability(ctx context.Context, zoneID *string) ([]*AvailabilityView, error) {
	snaps, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) ([]*slotSnapshot, error) {
		slots, err := tx.Slots().List(ctx, shared.SlotFilter{ZoneID: zoneID})
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(slots))
		for i, s := range slots {
			ids[i] = s.ID()
		}
		records, err := tx.Occupancy().List(ctx, ids)
		if err != nil {
			return nil, err
		}
		active, err := tx.Holds().FindActiveBySlots(ctx, ids)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]*occupancy.Record, len(records))
		for _, rec := range records {
			byID[rec.SlotID] = rec
		}
		out := make([]*slotSnapshot, 0, len(slots))
		for _, s := range slots {
			rec, ok := byID[s.ID()]
			if !ok {
				rec = occupancy.NewRecord(s.ID(), s.CreatedAt())
			}
			out = append(out, &slotSnapshot{slot: s, record: rec, active: active[s.ID()]})
		}
		return out, nil
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "zone", ptrOrEmpty(zoneID))
	}

	now := q.clock.Now()
	views := make([]*AvailabilityView, 0, len(snaps))
	var stale []uuid.UUID
	for _, snap := range snaps {
		view, staleID := q.buildView(snap, now)
		if staleID != nil {
			stale = append(stale, *staleID)
		}
		views = append(views, view)
	}
	expireQuietly(ctx, q.expirer, q.logger, stale)
	return views, nil
}

// buildView applies the same gates as placeHold. A stale holding hold counts as gone and its id
// is returned so the caller can persist the expiry.
func (q *availabilityQueriesImpl) buildView(snap *slotSnapshot, now time.Time) (*AvailabilityView, *uuid.UUID) {
	rec := snap.record
	view := &AvailabilityView{
		SlotID:               snap.slot.ID(),
		ZoneID:               snap.slot.ZoneID(),
		Occupied:             rec.Occupied,
		Confidence:           rec.Confidence,
		PredictedFreeMinutes: rec.PredictedFreeMinutes,
	}
	if rec.IsReserved(now) {
		view.ReservedUntil = rec.ReservedUntil
	}

	var stale *uuid.UUID
	active := snap.active
	if active != nil && active.IsStale(now) {
		id := active.ID()
		stale = &id
		active = nil
		view.ReservedUntil = nil
	}
	if active != nil {
		id := active.ID()
		status := hold.EffectiveStatus(active, now).String()
		view.ActiveHoldID = &id
		view.ActiveHoldStatus = &status
	}

	view.Available = active == nil && !rec.BlocksHold(q.threshold) && view.ReservedUntil == nil
	return view, stale
}

func ptrOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
