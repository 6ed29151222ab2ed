package queries

import (
	"context"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/pkg/errs"
	"parking-hold-engine/internal/usecase/shared"
)

type EventQueries interface {
	// ListEvents returns events with seq > filter.AfterSeq in ascending seq order.
	ListEvents(ctx context.Context, filter shared.EventFilter) (*EventPage, error)
}

type eventQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewEventQueries(uow shared.UnitOfWork) EventQueries {
	return &eventQueriesImpl{uow: uow}
}

func (q *eventQueriesImpl) ListEvents(ctx context.Context, filter shared.EventFilter) (*EventPage, error) {
	if filter.AfterSeq < 0 {
		return nil, errs.InvalidArgument("after", "must not be negative")
	}
	filter = filter.Normalize()

	events, err := shared.RunReadOnly(ctx, q.uow, func(ctx context.Context, tx shared.Tx) ([]*event.Event, error) {
		return tx.Events().List(ctx, filter)
	})
	if err != nil {
		return nil, shared.TranslateRepoErr(err, "events", "")
	}

	page := &EventPage{Events: make([]*EventView, len(events)), NextAfter: filter.AfterSeq}
	for i, e := range events {
		page.Events[i] = &EventView{
			Seq:       e.Seq,
			SlotID:    e.SlotID,
			Type:      e.Type.String(),
			Meta:      e.Meta,
			Source:    string(e.Source),
			CreatedAt: e.CreatedAt,
		}
		page.NextAfter = e.Seq
	}
	return page, nil
}
