package queries

import (
	"context"
	"log/slog"
	"time"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// Expirer persists the expiry of stale holds a read path came across.
type Expirer interface {
	ExpireHolds(ctx context.Context, holdIDs []uuid.UUID) (int, error)
}

type HoldQueries interface {
	GetHold(ctx context.Context, holdID uuid.UUID) (*HoldView, error)
}

type holdQueriesImpl struct {
	uow     shared.UnitOfWork
	expirer Expirer
	clock   clock.Clock
	logger  *slog.Logger
}

func NewHoldQueries(uow shared.UnitOfWork, expirer Expirer, clk clock.Clock, logger *slog.Logger) HoldQueries {
	return &holdQueriesImpl{uow: uow, expirer: expirer, clock: clk, logger: logger}
}

func (q *holdQueriesImpl) GetHold(ctx context.Context, holdID uuid.UUID) (*HoldView, error) {
	h, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) (*hold.Hold, error) {
		return tx.Holds().FindByID(ctx, holdID)
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "hold", holdID.String())
	}

	now := q.clock.Now()
	if h.IsStale(now) {
		expireQuietly(ctx, q.expirer, q.logger, []uuid.UUID{h.ID()})
	}
	return toHoldView(h, now), nil
}

// The view already reports the effective status, so a failed write-back only delays persistence.
func expireQuietly(ctx context.Context, expirer Expirer, logger *slog.Logger, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	if _, err := expirer.ExpireHolds(ctx, ids); err != nil {
		logger.Warn("lazy expiry on read failed", "holds", len(ids), "error", err.Error())
	}
}

func toHoldView(h *hold.Hold, now time.Time) *HoldView {
	return &HoldView{
		ID:          h.ID(),
		SlotID:      h.SlotID(),
		UserID:      h.UserID(),
		Status:      hold.EffectiveStatus(h, now).String(),
		HoldUntil:   h.HoldUntil(),
		ConfirmedAt: h.ConfirmedAt(),
		CreatedAt:   h.CreatedAt(),
		UpdatedAt:   h.UpdatedAt(),
	}
}
