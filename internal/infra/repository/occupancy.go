package repository

import (
	"context"
	"log/slog"
	"time"

	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/infra/db"
	"parking-hold-engine/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const occupancyColumns = `slot_id, occupied, confidence, vehicle_type, last_seen, reserved_until,
	predicted_free_minutes, prediction_confidence, updated_at`

type OccupancyRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewOccupancyRepository(dbtx db.DBTX, logger *slog.Logger) *OccupancyRepository {
	return &OccupancyRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *OccupancyRepository) Create(ctx context.Context, rec *occupancy.Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO slot_status (`+occupancyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		occupancyArgs(rec)...,
	)
	switch {
	case err == nil:
		return nil
	case pgconv.IsUniqueViolation(err):
		return infra.WrapRepoErr(r.logger, infra.KindDuplicateKey, "occupancy record already exists", err)
	case pgconv.IsForeignKeyViolation(err):
		return infra.WrapRepoErr(r.logger, infra.KindForeignKeyViolated, "occupancy record references unknown slot", err)
	default:
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create occupancy record", err)
	}
}

func (r *OccupancyRepository) FindBySlotID(ctx context.Context, slotID string) (*occupancy.Record, error) {
	return r.findOne(ctx, `SELECT `+occupancyColumns+` FROM slot_status WHERE slot_id = $1`, slotID)
}

func (r *OccupancyRepository) FindBySlotIDForUpdate(ctx context.Context, slotID string) (*occupancy.Record, error) {
	return r.findOne(ctx, `SELECT `+occupancyColumns+` FROM slot_status WHERE slot_id = $1 FOR UPDATE`, slotID)
}

func (r *OccupancyRepository) List(ctx context.Context, slotIDs []string) ([]*occupancy.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+occupancyColumns+` FROM slot_status
		WHERE slot_id = ANY($1)
		ORDER BY slot_id`, slotIDs)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list occupancy records", err)
	}
	recs, err := pgx.CollectRows(rows, scanOccupancy)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan occupancy records", err)
	}
	return recs, nil
}

func (r *OccupancyRepository) Save(ctx context.Context, rec *occupancy.Record) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE slot_status SET
			occupied = $2, confidence = $3, vehicle_type = $4, last_seen = $5, reserved_until = $6,
			predicted_free_minutes = $7, prediction_confidence = $8, updated_at = $9
		WHERE slot_id = $1`,
		occupancyArgs(rec)...,
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to save occupancy record", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "occupancy record not found", nil)
	}
	return nil
}

func (r *OccupancyRepository) SetReservedUntil(ctx context.Context, slotID string, until *time.Time, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE slot_status SET reserved_until = $2, updated_at = $3
		WHERE slot_id = $1`,
		slotID, pgconv.TimePtrToPgtype(until), now,
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to set reserved_until", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "occupancy record not found", nil)
	}
	return nil
}

func (r *OccupancyRepository) ClearStaleReservations(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE slot_status s SET reserved_until = NULL, updated_at = $1
		WHERE s.reserved_until IS NOT NULL
		  AND s.reserved_until < $1
		  AND NOT EXISTS (
		      SELECT 1 FROM holds h
		      WHERE h.slot_id = s.slot_id AND h.status IN ('holding', 'confirmed')
		  )`, now)
	if err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to clear stale reservations", err)
	}
	return tag.RowsAffected(), nil
}

func (r *OccupancyRepository) findOne(ctx context.Context, query string, args ...any) (*occupancy.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to query occupancy record", err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanOccupancy)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(r.logger, infra.KindNotFound, "occupancy record not found", nil)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan occupancy record", err)
	}
	return rec, nil
}

func occupancyArgs(rec *occupancy.Record) []any {
	return []any{
		rec.SlotID,
		rec.Occupied,
		rec.Confidence,
		pgconv.StringPtrToPgtype(rec.VehicleType),
		pgconv.TimePtrToPgtype(rec.LastSeen),
		pgconv.TimePtrToPgtype(rec.ReservedUntil),
		pgconv.IntPtrToPgtype(rec.PredictedFreeMinutes),
		pgconv.Float64PtrToPgtype(rec.PredictionConfidence),
		rec.UpdatedAt,
	}
}

func scanOccupancy(row pgx.CollectableRow) (*occupancy.Record, error) {
	var (
		rec                  occupancy.Record
		vehicleType          pgtype.Text
		lastSeen             pgtype.Timestamptz
		reservedUntil        pgtype.Timestamptz
		predictedFreeMinutes pgtype.Int4
		predictionConfidence pgtype.Float8
	)
	err := row.Scan(
		&rec.SlotID, &rec.Occupied, &rec.Confidence, &vehicleType, &lastSeen, &reservedUntil,
		&predictedFreeMinutes, &predictionConfidence, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.VehicleType = pgconv.StringPtrFromPgtype(vehicleType)
	rec.LastSeen = pgconv.TimePtrFromPgtype(lastSeen)
	rec.ReservedUntil = pgconv.TimePtrFromPgtype(reservedUntil)
	rec.PredictedFreeMinutes = pgconv.IntPtrFromPgtype(predictedFreeMinutes)
	rec.PredictionConfidence = pgconv.Float64PtrFromPgtype(predictionConfidence)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
