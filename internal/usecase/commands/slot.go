package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/pkg/errs"
	"parking-hold-engine/internal/usecase/shared"
)

type CreateSlotInput struct {
	SlotID          string
	ZoneID          string
	Polygon         json.RawMessage
	VehicleTypeHint *string
}

// UpdateSlotInput carries an administrative edit. Nil fields are left untouched.
type UpdateSlotInput struct {
	ZoneID          *string
	Polygon         json.RawMessage
	VehicleTypeHint *string
}

type SlotCommands interface {
	CreateSlot(ctx context.Context, in CreateSlotInput) (*slot.Slot, error)
	UpdateSlot(ctx context.Context, slotID string, in UpdateSlotInput) (*slot.Slot, error)
	// SeedSlots creates slot_001..slot_n in zoneID, skipping ids that already exist.
	SeedSlots(ctx context.Context, zoneID string, n int) (int, error)
}

type slotUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewSlotUseCase(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) SlotCommands {
	return &slotUseCaseImpl{uow: uow, clock: clk, logger: logger}
}

func (uc *slotUseCaseImpl) CreateSlot(ctx context.Context, in CreateSlotInput) (*slot.Slot, error) {
	now := uc.clock.Now()
	s, err := slot.NewSlot(in.SlotID, in.ZoneID, in.Polygon, in.VehicleTypeHint, now)
	if err != nil {
		return nil, slotArgumentError(err)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Slots().Create(ctx, s); err != nil {
			return err
		}
		if err := tx.Occupancy().Create(ctx, occupancy.NewRecord(s.ID(), now)); err != nil {
			return err
		}
		meta := map[string]any{"zone_id": s.ZoneID()}
		return appendEvent(ctx, tx, event.New(s.ID(), event.TypeSlotCreated, event.SourceAdmin, meta, now))
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, &errs.ConflictError{SlotID: in.SlotID, Reason: errs.ConflictExists}
		}
		return nil, shared.TranslateRepoErr(err, "slot", in.SlotID)
	}
	return s, nil
}

func (uc *slotUseCaseImpl) UpdateSlot(ctx context.Context, slotID string, in UpdateSlotInput) (*slot.Slot, error) {
	return shared.RunInTx(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*slot.Slot, error) {
		s, err := tx.Slots().FindByID(ctx, slotID)
		if err != nil {
			return nil, shared.TranslateRepoErr(err, "slot", slotID)
		}
		now := uc.clock.Now()
		if err := s.Edit(in.ZoneID, in.Polygon, in.VehicleTypeHint, now); err != nil {
			return nil, slotArgumentError(err)
		}
		if err := tx.Slots().Update(ctx, s); err != nil {
			return nil, shared.TranslateRepoErr(err, "slot", slotID)
		}
		meta := map[string]any{"zone_id": s.ZoneID()}
		if err := appendEvent(ctx, tx, event.New(slotID, event.TypeSlotUpdated, event.SourceAdmin, meta, now)); err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (uc *slotUseCaseImpl) SeedSlots(ctx context.Context, zoneID string, n int) (int, error) {
	created := 0
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("slot_%03d", i)
		_, err := uc.CreateSlot(ctx, CreateSlotInput{SlotID: id, ZoneID: zoneID})
		switch {
		case err == nil:
			created++
		case errs.Is(err, errs.ErrConflict):
			continue
		default:
			return created, errs.Wrap(err, "seed slot "+id)
		}
	}
	if created > 0 {
		uc.logger.Info("seeded slots", "zone_id", zoneID, "created", created, "requested", n)
	}
	return created, nil
}

func slotArgumentError(err error) error {
	switch {
	case errs.Is(err, slot.ErrInvalidSlotID):
		return errs.InvalidArgument("slot_id", err.Error())
	case errs.Is(err, slot.ErrInvalidZoneID):
		return errs.InvalidArgument("zone_id", err.Error())
	case errs.Is(err, slot.ErrInvalidPolygon):
		return errs.InvalidArgument("polygon", err.Error())
	default:
		return errs.InvalidArgument("slot", err.Error())
	}
}
