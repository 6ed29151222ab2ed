package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"parking-hold-engine/internal/domain/slot"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/infra/db"
	"parking-hold-engine/internal/pkg/pgconv"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const slotColumns = `slot_id, zone_id, polygon, vehicle_type_hint, created_at, updated_at`

type SlotRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewSlotRepository(dbtx db.DBTX, logger *slog.Logger) *SlotRepository {
	return &SlotRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *SlotRepository) Create(ctx context.Context, s *slot.Slot) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO slots (`+slotColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID(), s.ZoneID(), polygonArg(s.Polygon()), pgconv.StringPtrToPgtype(s.VehicleTypeHint()),
		s.CreatedAt(), s.UpdatedAt(),
	)
	switch {
	case err == nil:
		return nil
	case pgconv.IsUniqueViolation(err):
		return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "slot already exists", err)
	default:
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create slot", err)
	}
}

func (r *SlotRepository) Update(ctx context.Context, s *slot.Slot) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE slots SET zone_id = $2, polygon = $3, vehicle_type_hint = $4, updated_at = $5
		WHERE slot_id = $1`,
		s.ID(), s.ZoneID(), polygonArg(s.Polygon()), pgconv.StringPtrToPgtype(s.VehicleTypeHint()), s.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update slot", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "slot not found", nil)
	}
	return nil
}

func (r *SlotRepository) FindByID(ctx context.Context, id string) (*slot.Slot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+` FROM slots WHERE slot_id = $1`, id)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to query slot", err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanSlot)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "slot not found", nil)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan slot", err)
	}
	return s, nil
}

func (r *SlotRepository) List(ctx context.Context, filter shared.SlotFilter) ([]*slot.Slot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+slotColumns+` FROM slots
		WHERE ($1::text IS NULL OR zone_id = $1)
		ORDER BY slot_id`, pgconv.StringPtrToPgtype(filter.ZoneID))
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list slots", err)
	}
	slots, err := pgx.CollectRows(rows, scanSlot)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan slots", err)
	}
	return slots, nil
}

// nil polygon must reach the column as SQL NULL, not JSON null
func polygonArg(p json.RawMessage) any {
	if len(p) == 0 {
		return nil
	}
	return []byte(p)
}

func scanSlot(row pgx.CollectableRow) (*slot.Slot, error) {
	var (
		id, zoneID string
		polygon    []byte
		hint       pgtype.Text
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &zoneID, &polygon, &hint, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return slot.ReconstructSlot(
		id,
		zoneID,
		json.RawMessage(polygon),
		pgconv.StringPtrFromPgtype(hint),
		createdAt.UTC(),
		updatedAt.UTC(),
	), nil
}
