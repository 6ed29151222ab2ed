//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/infra/memstore"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/usecase/queries"
	"parking-hold-engine/internal/usecase/shared"
	"parking-hold-engine/tests/common/builder"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	uow       shared.UnitOfWork
	clock     *clock.MockClock
	holds     commands.HoldCommands
	slots     commands.SlotCommands
	occupancy commands.OccupancyCommands
	events    queries.EventQueries
}

func newLedgerFixture(t *testing.T, slotIDs ...string) *ledgerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := memstore.NewUoW(memstore.New(logger))
	clk := clock.NewMockClock(t0)
	policy := commands.LedgerPolicy{
		Bounds:             builder.DefaultBounds,
		DefaultHoldMinutes: 2,
		OccupancyThreshold: 0.6,
	}

	f := &ledgerFixture{
		uow:       uow,
		clock:     clk,
		holds:     commands.NewHoldUseCase(uow, clk, policy, logger),
		slots:     commands.NewSlotUseCase(uow, clk, logger),
		occupancy: commands.NewOccupancyUseCase(uow, clk, logger),
		events:    queries.NewEventQueries(uow),
	}
	for _, id := range slotIDs {
		_, err := f.slots.CreateSlot(context.Background(), builder.NewSlotBuilder().WithSlotID(id).BuildCreateInput())
		require.NoError(t, err)
	}
	return f
}

func (f *ledgerFixture) place(t *testing.T, slotID string, minutes int) *hold.Hold {
	t.Helper()
	h, err := f.holds.PlaceHold(context.Background(), builder.NewHoldBuilder().WithSlotID(slotID).WithMinutes(minutes).BuildPlaceInput())
	require.NoError(t, err)
	return h
}

func (f *ledgerFixture) eventTypes(t *testing.T, slotID string) []event.Type {
	t.Helper()
	page, err := f.events.ListEvents(context.Background(), shared.EventFilter{SlotID: &slotID, Limit: shared.MaxEventLimit})
	require.NoError(t, err)
	out := make([]event.Type, len(page.Events))
	for i, e := range page.Events {
		out[i] = event.Type(e.Type)
	}
	return out
}

func (f *ledgerFixture) persisted(t *testing.T, h *hold.Hold) *hold.Hold {
	t.Helper()
	got, err := shared.RunReadOnly(context.Background(), f.uow, func(ctx context.Context, tx shared.Tx) (*hold.Hold, error) {
		return tx.Holds().FindByID(ctx, h.ID())
	})
	require.NoError(t, err)
	return got
}

func (f *ledgerFixture) reservedUntil(t *testing.T, slotID string) *time.Time {
	t.Helper()
	rec, err := shared.RunReadOnly(context.Background(), f.uow, func(ctx context.Context, tx shared.Tx) (*time.Time, error) {
		rec, err := tx.Occupancy().FindBySlotID(ctx, slotID)
		if err != nil {
			return nil, err
		}
		return rec.ReservedUntil, nil
	})
	require.NoError(t, err)
	return rec
}
