package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/pkg/errs"
	"parking-hold-engine/internal/pkg/metrics"
	"parking-hold-engine/internal/pkg/ptr"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("parking-hold-engine/commands")

// LedgerPolicy holds the tunables of the reservation ledger.
type LedgerPolicy struct {
	Bounds             hold.Bounds
	DefaultHoldMinutes int
	OccupancyThreshold float64
}

func NewLedgerPolicy(cfg config.LedgerConfig) LedgerPolicy {
	return LedgerPolicy{
		Bounds:             hold.Bounds{MinMinutes: cfg.MinHoldMinutes, MaxMinutes: cfg.MaxHoldMinutes},
		DefaultHoldMinutes: cfg.DefaultHoldMinutes,
		OccupancyThreshold: cfg.OccupancyThreshold,
	}
}

type PlaceHoldInput struct {
	SlotID string
	// nil falls back to the policy default
	HoldMinutes *int
	UserID      *uuid.UUID
}

type HoldCommands interface {
	PlaceHold(ctx context.Context, in PlaceHoldInput) (*hold.Hold, error)
	ConfirmHold(ctx context.Context, holdID uuid.UUID) (*hold.Hold, error)
	CancelHold(ctx context.Context, holdID uuid.UUID) (*hold.Hold, error)
	ReleaseHold(ctx context.Context, holdID uuid.UUID) (*hold.Hold, error)
	// ExpireHolds persists the expiry of the given holds that are still stale, one transaction each.
	ExpireHolds(ctx context.Context, holdIDs []uuid.UUID) (int, error)
	// ExpireStale runs one sweep pass: up to limit stale holds, then orphaned reservations.
	ExpireStale(ctx context.Context, limit int) (int, error)
}

type holdUseCaseImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	policy LedgerPolicy
	logger *slog.Logger
}

func NewHoldUseCase(uow shared.UnitOfWork, clk clock.Clock, policy LedgerPolicy, logger *slog.Logger) HoldCommands {
	return &holdUseCaseImpl{
		uow:    uow,
		clock:  clk,
		policy: policy,
		logger: logger,
	}
}

func (uc *holdUseCaseImpl) PlaceHold(ctx context.Context, in PlaceHoldInput) (h *hold.Hold, err error) {
	ctx, span := tracer.Start(ctx, "ledger.place_hold", trace.WithAttributes(attribute.String("slot.id", in.SlotID)))
	defer observe(span, "place", time.Now(), &err)

	if in.SlotID == "" {
		return nil, errs.InvalidArgument("slot_id", "is required")
	}
	minutes := ptr.Or(in.HoldMinutes, uc.policy.DefaultHoldMinutes)
	if verr := uc.policy.Bounds.Validate(minutes); verr != nil {
		return nil, errs.InvalidArgument("hold_minutes",
			fmt.Sprintf("must be between %d and %d", uc.policy.Bounds.MinMinutes, uc.policy.Bounds.MaxMinutes))
	}

	var out placeOutcome
	h, err = shared.RunInTx(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*hold.Hold, error) {
		out = placeOutcome{}
		return uc.placeLocked(ctx, tx, in.SlotID, minutes, in.UserID, &out)
	})
	if err != nil {
		// The in-memory store re-checks uniqueness at commit, after fn returned
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, &errs.ConflictError{SlotID: in.SlotID, Reason: errs.ConflictHeld}
		}
		return nil, shared.TranslateRepoErr(err, "slot", in.SlotID)
	}
	if out.lazilyExpired {
		metrics.AddHoldsExpired(string(event.SourceLedger), 1)
	}
	if out.gateErr != nil {
		return nil, out.gateErr
	}
	span.SetAttributes(attribute.String("hold.id", h.ID().String()))
	return h, nil
}

// placeOutcome carries what placeLocked decided besides the new hold. A gate that rejects the
// request after a stale hold was expired lands in gateErr so the expiry still commits.
type placeOutcome struct {
	lazilyExpired bool
	gateErr       error
}

func (uc *holdUseCaseImpl) placeLocked(
	ctx context.Context,
	tx shared.Tx,
	slotID string,
	minutes int,
	userID *uuid.UUID,
	out *placeOutcome,
) (*hold.Hold, error) {
	if _, err := tx.Slots().FindByID(ctx, slotID); err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	rec, err := tx.Occupancy().FindBySlotIDForUpdate(ctx, slotID)
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	// Read the clock only once the slot lock is held
	now := uc.clock.Now()

	active, err := tx.Holds().FindActiveBySlot(ctx, slotID)
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	if active != nil {
		if !active.IsStale(now) {
			return nil, heldConflict(active, now)
		}
		if err := uc.expireLocked(ctx, tx, active, now, event.SourceLedger); err != nil {
			return nil, err
		}
		out.lazilyExpired = true
		rec.ReservedUntil = nil
	}

	reject := func(err error) (*hold.Hold, error) {
		if out.lazilyExpired {
			out.gateErr = err
			return nil, nil
		}
		return nil, err
	}
	if rec.BlocksHold(uc.policy.OccupancyThreshold) {
		return reject(&errs.ConflictError{SlotID: slotID, Reason: errs.ConflictOccupied})
	}
	if rec.IsReserved(now) {
		until := *rec.ReservedUntil
		return reject(&errs.ConflictError{SlotID: slotID, Reason: errs.ConflictReserved, Until: &until})
	}

	h, err := hold.NewHold(slotID, minutes, userID, uc.policy.Bounds, now)
	if err != nil {
		return nil, errs.InvalidArgument("hold_minutes", err.Error())
	}
	if err := tx.Holds().Create(ctx, h); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, &errs.ConflictError{SlotID: slotID, Reason: errs.ConflictHeld}
		}
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	until := h.HoldUntil()
	if err := tx.Occupancy().SetReservedUntil(ctx, slotID, &until, now); err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", slotID)
	}
	if err := appendEvent(ctx, tx, event.New(slotID, event.TypeHoldCreated, event.SourceLedger, holdMeta(h), now)); err != nil {
		return nil, err
	}
	return h, nil
}

func (uc *holdUseCaseImpl) ConfirmHold(ctx context.Context, holdID uuid.UUID) (*hold.Hold, error) {
	return uc.transition(ctx, holdID, hold.OpConfirm)
}

func (uc *holdUseCaseImpl) CancelHold(ctx context.Context, holdID uuid.UUID) (*hold.Hold, error) {
	return uc.transition(ctx, holdID, hold.OpCancel)
}

func (uc *holdUseCaseImpl) ReleaseHold(ctx context.Context, holdID uuid.UUID) (*hold.Hold, error) {
	return uc.transition(ctx, holdID, hold.OpRelease)
}

var transitionEvents = map[hold.Operation]event.Type{
	hold.OpConfirm: event.TypeHoldConfirmed,
	hold.OpCancel:  event.TypeHoldCancelled,
	hold.OpRelease: event.TypeHoldReleased,
}

func (uc *holdUseCaseImpl) transition(ctx context.Context, holdID uuid.UUID, op hold.Operation) (h *hold.Hold, err error) {
	ctx, span := tracer.Start(ctx, "ledger."+op.String()+"_hold", trace.WithAttributes(attribute.String("hold.id", holdID.String())))
	defer observe(span, op.String(), time.Now(), &err)

	// A hold found stale is expired and committed, then the caller still gets InvalidState
	var stateErr error
	h, err = shared.RunInTx(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) (*hold.Hold, error) {
		stateErr = nil
		h, err := lockHold(ctx, tx, holdID)
		if err != nil {
			return nil, err
		}
		now := uc.clock.Now()

		if h.IsStale(now) {
			if err := uc.expireLocked(ctx, tx, h, now, event.SourceLedger); err != nil {
				return nil, err
			}
			stateErr = invalidState(h, op)
			return h, nil
		}

		if err := applyOperation(h, op, now); err != nil {
			return nil, invalidState(h, op)
		}
		if err := tx.Holds().UpdateStatus(ctx, h); err != nil {
			return nil, shared.TranslateRepoErr(err, "hold", holdID.String())
		}
		if op != hold.OpConfirm {
			if err := tx.Occupancy().SetReservedUntil(ctx, h.SlotID(), nil, now); err != nil {
				return nil, shared.TranslateRepoErr(err, "slot", h.SlotID())
			}
		}
		return h, appendEvent(ctx, tx, event.New(h.SlotID(), transitionEvents[op], event.SourceLedger, holdMeta(h), now))
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "hold", holdID.String())
	}
	if stateErr != nil {
		metrics.AddHoldsExpired(string(event.SourceLedger), 1)
		return nil, stateErr
	}
	return h, nil
}

func applyOperation(h *hold.Hold, op hold.Operation, now time.Time) error {
	switch op {
	case hold.OpConfirm:
		return h.Confirm(now)
	case hold.OpCancel:
		return h.Cancel(now)
	case hold.OpRelease:
		return h.Release(now)
	default:
		return hold.ErrInvalidTransition
	}
}

func (uc *holdUseCaseImpl) ExpireHolds(ctx context.Context, holdIDs []uuid.UUID) (int, error) {
	return uc.expireEach(ctx, holdIDs, event.SourceLedger)
}

func (uc *holdUseCaseImpl) ExpireStale(ctx context.Context, limit int) (expired int, err error) {
	ctx, span := tracer.Start(ctx, "ledger.expire_stale")
	defer observe(span, "expire_stale", time.Now(), &err)

	now := uc.clock.Now()
	ids, err := shared.RunReadOnly(ctx, uc.uow, func(ctx context.Context, tx shared.Tx) ([]uuid.UUID, error) {
		return tx.Holds().ListStale(ctx, now, limit)
	})
	if err != nil {
		return 0, shared.TranslateRepoErr(err, "hold", "")
	}

	expired, err = uc.expireEach(ctx, ids, event.SourceSweeper)
	if err != nil {
		return expired, err
	}

	var cleared int64
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Occupancy().ClearStaleReservations(ctx, uc.clock.Now())
		cleared = n
		return err
	})
	if err != nil {
		return expired, shared.TranslateRepoErr(err, "slot", "")
	}
	if cleared > 0 {
		uc.logger.Info("cleared orphaned reservations", "count", cleared)
	}
	span.SetAttributes(attribute.Int("holds.expired", expired))
	return expired, nil
}

// expireEach expires each hold in its own transaction so one slow slot does not hold the others.
// Holds confirmed, cancelled or already expired in the meantime are skipped.
func (uc *holdUseCaseImpl) expireEach(ctx context.Context, holdIDs []uuid.UUID, source event.Source) (int, error) {
	expired := 0
	for _, id := range holdIDs {
		var done bool
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			done = false
			h, err := lockHold(ctx, tx, id)
			if err != nil {
				return err
			}
			now := uc.clock.Now()
			if !h.IsStale(now) {
				return nil
			}
			if err := uc.expireLocked(ctx, tx, h, now, source); err != nil {
				return err
			}
			done = true
			return nil
		})
		switch {
		case err == nil:
		case errs.Is(err, errs.ErrNotFound):
			continue
		default:
			return expired, shared.TranslateRepoErr(err, "hold", id.String())
		}
		if done {
			expired++
			uc.logger.Info("hold expired", "hold_id", id.String(), "source", string(source))
		}
	}
	metrics.AddHoldsExpired(string(source), expired)
	return expired, nil
}

// expireLocked persists the expiry of a stale hold. The caller holds the slot lock.
func (uc *holdUseCaseImpl) expireLocked(ctx context.Context, tx shared.Tx, h *hold.Hold, now time.Time, source event.Source) error {
	if err := h.Expire(now); err != nil {
		return invalidState(h, hold.OpExpire)
	}
	if err := tx.Holds().UpdateStatus(ctx, h); err != nil {
		return shared.TranslateRepoErr(err, "hold", h.ID().String())
	}
	if err := tx.Occupancy().SetReservedUntil(ctx, h.SlotID(), nil, now); err != nil {
		return shared.TranslateRepoErr(err, "slot", h.SlotID())
	}
	return appendEvent(ctx, tx, event.New(h.SlotID(), event.TypeHoldExpired, source, holdMeta(h), now))
}

// lockHold takes the slot lock before the hold row lock, the order every write path uses.
func lockHold(ctx context.Context, tx shared.Tx, holdID uuid.UUID) (*hold.Hold, error) {
	peek, err := tx.Holds().FindByID(ctx, holdID)
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "hold", holdID.String())
	}
	if _, err := tx.Occupancy().FindBySlotIDForUpdate(ctx, peek.SlotID()); err != nil {
		return nil, shared.TranslateRepoErr(err, "slot", peek.SlotID())
	}
	h, err := tx.Holds().FindByIDForUpdate(ctx, holdID)
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "hold", holdID.String())
	}
	return h, nil
}

func appendEvent(ctx context.Context, tx shared.Tx, e *event.Event) error {
	if err := tx.Events().Append(ctx, e); err != nil {
		return shared.TranslateRepoErr(err, "slot", e.SlotID)
	}
	return nil
}

func heldConflict(active *hold.Hold, now time.Time) error {
	id := active.ID()
	conflict := &errs.ConflictError{
		SlotID:         active.SlotID(),
		Reason:         errs.ConflictHeld,
		BlockingHoldID: &id,
		BlockingStatus: hold.EffectiveStatus(active, now).String(),
	}
	// A confirmed hold has no deadline: it lasts until released
	if active.Status() == hold.StatusHolding {
		until := active.HoldUntil()
		conflict.Until = &until
	}
	return conflict
}

func invalidState(h *hold.Hold, op hold.Operation) error {
	return &errs.InvalidStateError{HoldID: h.ID(), Status: h.Status().String(), Operation: op.String()}
}

func holdMeta(h *hold.Hold) map[string]any {
	meta := map[string]any{
		"hold_id":    h.ID().String(),
		"status":     h.Status().String(),
		"hold_until": h.HoldUntil().UTC().Format(time.RFC3339Nano),
	}
	if h.UserID() != nil {
		meta["user_id"] = h.UserID().String()
	}
	return meta
}

func occupancyMeta(rec *occupancy.Record) map[string]any {
	meta := map[string]any{
		"occupied":   rec.Occupied,
		"confidence": rec.Confidence,
	}
	if rec.VehicleType != nil {
		meta["vehicle_type"] = *rec.VehicleType
	}
	return meta
}

func observe(span trace.Span, operation string, start time.Time, errp *error) {
	err := *errp
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, metrics.Outcome(err))
	}
	metrics.ObserveHoldOperation(operation, start, err)
	span.End()
}
