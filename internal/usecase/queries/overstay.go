package queries

import (
	"context"
	"sort"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/usecase/shared"
)

type OverstayQueries interface {
	ListOverstays(ctx context.Context) ([]*OverstayView, error)
}

type overstayQueriesImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	policy hold.OverstayPolicy
}

func NewOverstayQueries(uow shared.UnitOfWork, clk clock.Clock, policy hold.OverstayPolicy) OverstayQueries {
	return &overstayQueriesImpl{uow: uow, clock: clk, policy: policy}
}

// ListOverstays returns the worst offenders first.
func (q *overstayQueriesImpl) ListOverstays(ctx context.Context) ([]*OverstayView, error) {
	confirmed, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) ([]*hold.Hold, error) {
		return tx.Holds().ListConfirmed(ctx)
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "holds", "")
	}

	now := q.clock.Now()
	views := make([]*OverstayView, 0)
	for _, h := range confirmed {
		o := q.policy.DetectOverstay(h, now)
		if o == nil {
			continue
		}
		views = append(views, &OverstayView{
			HoldID:          h.ID(),
			SlotID:          h.SlotID(),
			UserID:          h.UserID(),
			ConfirmedAt:     *h.ConfirmedAt(),
			ParkedMinutes:   int(o.Parked.Minutes()),
			OverstayMinutes: int(o.Over.Minutes()),
			Severity:        string(o.Severity),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].OverstayMinutes > views[j].OverstayMinutes
	})
	return views, nil
}
