//go:build unit

package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/domain/occupancy"
	"parking-hold-engine/internal/infra"
	"parking-hold-engine/internal/infra/repository"
	"parking-hold-engine/tests/common/builder"
	dbmock "parking-hold-engine/tests/mock/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	errConnection = errors.New("database connection error")
	errUnique     = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	errForeignKey = &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tag(s string) pgconn.CommandTag {
	return pgconn.NewCommandTag(s)
}

func assertKind(t *testing.T, err error, kind infra.RepositoryErrorKind) {
	t.Helper()
	if kind == "" {
		assert.NoError(t, err)
		return
	}
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, kind), "expected kind [%v] but got [%T] (%v)", kind, err, err)
}

// =============================================================================
// Slot Repository Tests
// =============================================================================

func TestSlotRepository_Create(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		execErr    error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: slot inserted"},
		{name: "error: slot id already taken", execErr: errUnique, expectKind: infra.KindDuplicateKey},
		{name: "error: database error occurs", execErr: errConnection, expectKind: infra.KindDBFailure},
		{name: "error: caller gave up", execErr: context.Canceled, expectKind: infra.KindCanceled},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(tag("INSERT 0 1"), tc.execErr)

			s, err := builder.NewSlotBuilder().BuildDomain()
			require.NoError(t, err)

			err = repository.NewSlotRepository(mockDB, discardLogger()).Create(ctx, s)
			assertKind(t, err, tc.expectKind)
		})
	}
}

func TestSlotRepository_Update(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		tag        pgconn.CommandTag
		execErr    error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: slot updated", tag: tag("UPDATE 1")},
		{name: "error: no such slot", tag: tag("UPDATE 0"), expectKind: infra.KindNotFound},
		{name: "error: database error occurs", execErr: errConnection, expectKind: infra.KindDBFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.tag, tc.execErr)

			s, err := builder.NewSlotBuilder().BuildDomain()
			require.NoError(t, err)

			err = repository.NewSlotRepository(mockDB, discardLogger()).Update(ctx, s)
			assertKind(t, err, tc.expectKind)
		})
	}
}

// =============================================================================
// Hold Repository Tests
// =============================================================================

func TestHoldRepository_Create(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		execErr    error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: hold inserted"},
		{name: "error: slot already has an active hold", execErr: errUnique, expectKind: infra.KindDuplicateKey},
		{name: "error: unknown slot", execErr: errForeignKey, expectKind: infra.KindForeignKeyViolated},
		{name: "error: database error occurs", execErr: errConnection, expectKind: infra.KindDBFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(tag("INSERT 0 1"), tc.execErr)

			h, err := builder.NewHoldBuilder().BuildDomain()
			require.NoError(t, err)

			err = repository.NewHoldRepository(mockDB, discardLogger()).Create(ctx, h)
			assertKind(t, err, tc.expectKind)
		})
	}
}

func TestHoldRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		tag        pgconn.CommandTag
		execErr    error
		expectKind infra.RepositoryErrorKind
	}{
		{name: "success: status written", tag: tag("UPDATE 1")},
		{name: "error: hold vanished", tag: tag("UPDATE 0"), expectKind: infra.KindNotFound},
		{name: "error: deadline exceeded", execErr: context.DeadlineExceeded, expectKind: infra.KindCanceled},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.tag, tc.execErr)

			h := builder.NewHoldBuilder().BuildPersisted(hold.StatusConfirmed)
			err := repository.NewHoldRepository(mockDB, discardLogger()).UpdateStatus(ctx, h)
			assertKind(t, err, tc.expectKind)
		})
	}
}

func TestHoldRepository_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("error: missing hold maps to not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(&emptyRows{}, nil)

		h, err := repository.NewHoldRepository(mockDB, discardLogger()).FindByID(ctx, uuid.New())
		assertKind(t, err, infra.KindNotFound)
		assert.Nil(t, h)
	})

	t.Run("error: query failure is a database failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errConnection)

		_, err := repository.NewHoldRepository(mockDB, discardLogger()).FindByID(ctx, uuid.New())
		assertKind(t, err, infra.KindDBFailure)
	})

	t.Run("success: no active hold is not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(&emptyRows{}, nil)

		h, err := repository.NewHoldRepository(mockDB, discardLogger()).FindActiveBySlot(ctx, "slot_001")
		require.NoError(t, err)
		assert.Nil(t, h)
	})

	t.Run("success: row lock is requested", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		var query string
		mockDB.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
			query = sql
			return &emptyRows{}, nil
		})

		_, _ = repository.NewHoldRepository(mockDB, discardLogger()).FindByIDForUpdate(ctx, uuid.New())
		assert.Contains(t, query, "FOR UPDATE")
	})
}

// =============================================================================
// Occupancy Repository Tests
// =============================================================================

func TestOccupancyRepository_Writes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	until := now.Add(2 * time.Minute)

	testCases := []struct {
		name       string
		tag        pgconn.CommandTag
		execErr    error
		call       func(*repository.OccupancyRepository) error
		expectKind infra.RepositoryErrorKind
	}{
		{
			name: "success: reservation set",
			tag:  tag("UPDATE 1"),
			call: func(r *repository.OccupancyRepository) error {
				return r.SetReservedUntil(ctx, "slot_001", &until, now)
			},
		},
		{
			name: "error: reservation on unknown slot",
			tag:  tag("UPDATE 0"),
			call: func(r *repository.OccupancyRepository) error {
				return r.SetReservedUntil(ctx, "ghost", nil, now)
			},
			expectKind: infra.KindNotFound,
		},
		{
			name:    "error: record already exists",
			execErr: errUnique,
			call: func(r *repository.OccupancyRepository) error {
				return r.Create(ctx, occupancy.NewRecord("slot_001", now))
			},
			expectKind: infra.KindDuplicateKey,
		},
		{
			name:    "error: record for unknown slot",
			execErr: errForeignKey,
			call: func(r *repository.OccupancyRepository) error {
				return r.Create(ctx, occupancy.NewRecord("ghost", now))
			},
			expectKind: infra.KindForeignKeyViolated,
		},
		{
			name:    "error: save fails",
			execErr: errConnection,
			call: func(r *repository.OccupancyRepository) error {
				return r.Save(ctx, occupancy.NewRecord("slot_001", now))
			},
			expectKind: infra.KindDBFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockDB := dbmock.NewMockDBTX(ctrl)
			mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(tc.tag, tc.execErr)

			err := tc.call(repository.NewOccupancyRepository(mockDB, discardLogger()))
			assertKind(t, err, tc.expectKind)
		})
	}
}

func TestOccupancyRepository_ClearStaleReservations(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := dbmock.NewMockDBTX(ctrl)
	mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any()).Return(tag("UPDATE 3"), nil)

	n, err := repository.NewOccupancyRepository(mockDB, discardLogger()).ClearStaleReservations(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// =============================================================================
// Event Repository Tests
// =============================================================================

func TestEventRepository_Append(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success: seq assigned by the database", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().QueryRow(gomock.Any(), gomock.Any(), gomock.Any()).Return(seqRow{seq: 42})

		e := event.New("slot_001", event.TypeHoldCreated, event.SourceLedger, nil, now)
		require.NoError(t, repository.NewEventRepository(mockDB, discardLogger()).Append(ctx, e))
		assert.Equal(t, int64(42), e.Seq)
	})

	t.Run("error: insert fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := dbmock.NewMockDBTX(ctrl)
		mockDB.EXPECT().QueryRow(gomock.Any(), gomock.Any(), gomock.Any()).Return(seqRow{err: errConnection})

		e := event.New("slot_001", event.TypeHoldCreated, event.SourceLedger, nil, now)
		err := repository.NewEventRepository(mockDB, discardLogger()).Append(ctx, e)
		assertKind(t, err, infra.KindDBFailure)
	})
}

// emptyRows is a result set with no rows.
type emptyRows struct{ closed bool }

func (r *emptyRows) Close()                                       { r.closed = true }
func (r *emptyRows) Err() error                                   { return nil }
func (r *emptyRows) CommandTag() pgconn.CommandTag                { return tag("SELECT 0") }
func (r *emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *emptyRows) Next() bool                                   { return false }
func (r *emptyRows) Scan(...any) error                            { return errors.New("no row to scan") }
func (r *emptyRows) Values() ([]any, error)                       { return nil, nil }
func (r *emptyRows) RawValues() [][]byte                          { return nil }
func (r *emptyRows) Conn() *pgx.Conn                              { return nil }

type seqRow struct {
	seq int64
	err error
}

func (r seqRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.seq
	return nil
}
