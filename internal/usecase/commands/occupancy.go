package commands

import (
	"context"
	"log/slog"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/pkg/errs"
	"parking-hold-engine/internal/pkg/metrics"
	"parking-hold-engine/internal/usecase/shared"
)

type SetPredictionInput struct {
	PredictedFreeMinutes int
	Confidence           float64
}

// OccupancyCommands are the write paths of the detection and prediction collaborators.
// reserved_until is not writable here: only the ledger sets it.
type OccupancyCommands interface {
	SetOccupancy(ctx context.Context, slotID string, sensing occupancy.Sensing) (*occupancy.Record, error)
	SetPrediction(ctx context.Context, slotID string, in SetPredictionInput) (*occupancy.Record, error)
}

type occupancyUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewOccupancyUseCase(uow shared.UnitOfWork, clk clock.Clock, logger *slog.Logger) OccupancyCommands {
	return &occupancyUseCaseImpl{uow: uow, clock: clk, logger: logger}
}

func (uc *occupancyUseCaseImpl) SetOccupancy(ctx context.Context, slotID string, sensing occupancy.Sensing) (*occupancy.Record, error) {
	if err := occupancy.ValidateConfidence(sensing.Confidence); err != nil {
		return nil, errs.InvalidArgument("confidence", err.Error())
	}

	var changed bool
	rec, err := shared.RunInTx(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*occupancy.Record, error) {
		rec, err := tx.Occupancy().FindBySlotIDForUpdate(ctx, slotID)
		if err != nil {
			return nil, shared.TranslateRepoErr(err, "slot", slotID)
		}
		now := uc.clock.Now()
		wasOccupied := rec.Occupied

		changed, err = rec.ApplySensing(sensing, now)
		if err != nil {
			return nil, errs.InvalidArgument("confidence", err.Error())
		}
		if err := tx.Occupancy().Save(ctx, rec); err != nil {
			return nil, shared.TranslateRepoErr(err, "slot", slotID)
		}
		if !changed {
			return rec, nil
		}

		meta := occupancyMeta(rec)
		meta["previous_occupied"] = wasOccupied
		return rec, appendEvent(ctx, tx, event.New(slotID, event.TypeOccupancyChanged, event.SourceEdge, meta, now))
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}

	metrics.IncOccupancyUpdate("sensing", changed)
	if changed {
		uc.logger.Debug("occupancy changed", "slot_id", slotID, "occupied", rec.Occupied, "confidence", rec.Confidence)
	}
	return rec, nil
}

func (uc *occupancyUseCaseImpl) SetPrediction(ctx context.Context, slotID string, in SetPredictionInput) (*occupancy.Record, error) {
	if err := occupancy.ValidatePrediction(in.PredictedFreeMinutes); err != nil {
		return nil, errs.InvalidArgument("predicted_free_minutes", err.Error())
	}
	if err := occupancy.ValidateConfidence(in.Confidence); err != nil {
		return nil, errs.InvalidArgument("prediction_confidence", err.Error())
	}

	rec, err := shared.RunInTx(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*occupancy.Record, error) {
		rec, err := tx.Occupancy().FindBySlotIDForUpdate(ctx, slotID)
		if err != nil {
			return nil, shared.TranslateRepoErr(err, "slot", slotID)
		}
		if err := rec.ApplyPrediction(in.PredictedFreeMinutes, in.Confidence, uc.clock.Now()); err != nil {
			return nil, errs.InvalidArgument("prediction", err.Error())
		}
		if err := tx.Occupancy().Save(ctx, rec); err != nil {
			return nil, shared.TranslateRepoErr(err, "slot", slotID)
		}
		return rec, nil
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	metrics.IncOccupancyUpdate("prediction", true)
	return rec, nil
}
