package repository

import (
	"context"
	"log/slog"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/infra/db"
	"parking-hold-engine/internal/pkg/pgconv"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

type EventRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewEventRepository(dbtx db.DBTX, logger *slog.Logger) *EventRepository {
	return &EventRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *EventRepository) Append(ctx context.Context, e *event.Event) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO events (slot_id, event_type, meta, source, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq`,
		e.SlotID, e.Type.String(), e.Meta, string(e.Source), e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to append event", err)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, filter shared.EventFilter) ([]*event.Event, error) {
	filter = filter.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT seq, slot_id, event_type, meta, source, created_at FROM events
		WHERE seq > $1 AND ($2::text IS NULL OR slot_id = $2)
		ORDER BY seq
		LIMIT $3`,
		filter.AfterSeq, pgconv.StringPtrToPgtype(filter.SlotID), filter.Limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list events", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*event.Event, error) {
		var (
			e           event.Event
			typ, source string
		)
		if err := row.Scan(&e.Seq, &e.SlotID, &typ, &e.Meta, &source, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = event.Type(typ)
		e.Source = event.Source(source)
		e.CreatedAt = e.CreatedAt.UTC()
		return &e, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan events", err)
	}
	return events, nil
}
