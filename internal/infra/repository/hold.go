package repository

import (
	"context"
	"log/slog"
	"time"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/infra/db"
	"parking-hold-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const holdColumns = `id, user_id, slot_id, status, hold_until, confirmed_at, created_at, updated_at`

type HoldRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewHoldRepository(dbtx db.DBTX, logger *slog.Logger) *HoldRepository {
	return &HoldRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO holds (`+holdColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID(), pgconv.UUIDPtrToPgtype(h.UserID()), h.SlotID(), h.Status().String(),
		h.HoldUntil(), pgconv.TimePtrToPgtype(h.ConfirmedAt()), h.CreatedAt(), h.UpdatedAt(),
	)
	switch {
	case err == nil:
		return nil
	case pgconv.IsUniqueViolation(err):
		return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "slot already has an active hold", err)
	case pgconv.IsForeignKeyViolation(err):
		return infra.WrapRepoErr(r.logger, infra.KindForeignKeyViolated, "hold references unknown slot", err)
	default:
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create hold", err)
	}
}

func (r *HoldRepository) FindByID(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	return r.findOne(ctx, `SELECT `+holdColumns+` FROM holds WHERE id = $1`, id)
}

func (r *HoldRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	return r.findOne(ctx, `SELECT `+holdColumns+` FROM holds WHERE id = $1 FOR UPDATE`, id)
}

func (r *HoldRepository) FindActiveBySlot(ctx context.Context, slotID string) (*hold.Hold, error) {
	h, err := r.findOne(ctx, `
		SELECT `+holdColumns+` FROM holds
		WHERE slot_id = $1 AND status IN ('holding', 'confirmed')`, slotID)
	if infra.IsKind(err, infra.KindNotFound) {
		return nil, nil
	}
	return h, err
}

func (r *HoldRepository) FindActiveBySlots(ctx context.Context, slotIDs []string) (map[string]*hold.Hold, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+holdColumns+` FROM holds
		WHERE slot_id = ANY($1) AND status IN ('holding', 'confirmed')`, slotIDs)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list active holds", err)
	}
	holds, err := pgx.CollectRows(rows, scanHold)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan active holds", err)
	}

	bySlot := make(map[string]*hold.Hold, len(holds))
	for _, h := range holds {
		bySlot[h.SlotID()] = h
	}
	return bySlot, nil
}

func (r *HoldRepository) UpdateStatus(ctx context.Context, h *hold.Hold) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE holds SET status = $2, confirmed_at = $3, updated_at = $4
		WHERE id = $1`,
		h.ID(), h.Status().String(), pgconv.TimePtrToPgtype(h.ConfirmedAt()), h.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update hold status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "hold not found", nil)
	}
	return nil
}

func (r *HoldRepository) ListStale(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM holds
		WHERE status = 'holding' AND hold_until < $1
		ORDER BY hold_until
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list stale holds", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan stale holds", err)
	}
	return ids, nil
}

func (r *HoldRepository) ListConfirmed(ctx context.Context) ([]*hold.Hold, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+holdColumns+` FROM holds
		WHERE status = 'confirmed'
		ORDER BY confirmed_at`)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list confirmed holds", err)
	}
	holds, err := pgx.CollectRows(rows, scanHold)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan confirmed holds", err)
	}
	return holds, nil
}

func (r *HoldRepository) findOne(ctx context.Context, query string, args ...any) (*hold.Hold, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to query hold", err)
	}
	h, err := pgx.CollectExactlyOneRow(rows, scanHold)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "hold not found", nil)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan hold", err)
	}
	return h, nil
}

func scanHold(row pgx.CollectableRow) (*hold.Hold, error) {
	var (
		id          uuid.UUID
		userID      pgtype.UUID
		slotID      string
		status      string
		holdUntil   time.Time
		confirmedAt pgtype.Timestamptz
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &userID, &slotID, &status, &holdUntil, &confirmedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return hold.ReconstructHold(
		id,
		pgconv.UUIDPtrFromPgtype(userID),
		slotID,
		hold.Status(status),
		holdUntil.UTC(),
		pgconv.TimePtrFromPgtype(confirmedAt),
		createdAt.UTC(),
		updatedAt.UTC(),
	), nil
}
