//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by both a pool and a transaction.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func CreateTestSlot(t *testing.T, db DBLike, slotID, zoneID string) string {
	t.Helper()

	ctx := context.Background()
	_, err := db.Exec(ctx, "INSERT INTO slots (slot_id, zone_id) VALUES ($1, $2) ON CONFLICT (slot_id) DO NOTHING", slotID, zoneID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, "INSERT INTO slot_status (slot_id) VALUES ($1) ON CONFLICT (slot_id) DO NOTHING", slotID)
	require.NoError(t, err)

	return slotID
}

func SetTestOccupancy(t *testing.T, db DBLike, slotID string, occupied bool, confidence float64) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE slot_status SET occupied = $2, confidence = $3, last_seen = now(), updated_at = now() WHERE slot_id = $1",
		slotID, occupied, confidence)
	require.NoError(t, err)
}

// CreateTestHold inserts a hold row directly, bypassing the ledger. Used to stage stale holds.
func CreateTestHold(t *testing.T, db DBLike, slotID, status string, holdUntil time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO holds (id, slot_id, status, hold_until) VALUES ($1, $2, $3, $4)",
		id, slotID, status, holdUntil)
	require.NoError(t, err)

	if status == "holding" || status == "confirmed" {
		_, err = db.Exec(context.Background(),
			"UPDATE slot_status SET reserved_until = $2 WHERE slot_id = $1", slotID, holdUntil)
		require.NoError(t, err)
	}
	return id
}

func CountEvents(t *testing.T, db DBLike, slotID, eventType string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM events WHERE slot_id = $1 AND event_type = $2", slotID, eventType).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO slots (slot_id, zone_id) VALUES
		    ('slot_001', 'zone_a'),
		    ('slot_002', 'zone_a'),
		    ('slot_003', 'zone_b')
		ON CONFLICT (slot_id) DO NOTHING;
	`)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO slot_status (slot_id)
		SELECT slot_id FROM slots
		ON CONFLICT (slot_id) DO NOTHING;
	`)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
