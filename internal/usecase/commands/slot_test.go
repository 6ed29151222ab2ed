//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"testing"

	"parking-hold-engine/internal/domain/event"
	"parking-hold-engine/internal/pkg/errs"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("success: slot starts free with an occupancy record", func(t *testing.T) {
		f := newLedgerFixture(t)
		s, err := f.slots.CreateSlot(ctx, builder.NewSlotBuilder().BuildCreateInput())
		require.NoError(t, err)
		assert.Equal(t, "slot_001", s.ID())
		assert.Equal(t, "zone_a", s.ZoneID())
		assert.Nil(t, f.reservedUntil(t, "slot_001"))

		if diff := cmp.Diff([]event.Type{event.TypeSlotCreated}, f.eventTypes(t, "slot_001")); diff != "" {
			t.Errorf("events mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("error: duplicate slot id", func(t *testing.T) {
		f := newLedgerFixture(t, "slot_001")
		_, err := f.slots.CreateSlot(ctx, builder.NewSlotBuilder().BuildCreateInput())
		var conflict *errs.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, errs.ConflictExists, conflict.Reason)
	})

	t.Run("error: invalid fields map to argument errors", func(t *testing.T) {
		f := newLedgerFixture(t)
		testCases := []struct {
			name   string
			mutate func(*builder.SlotBuilder)
			field  string
		}{
			{name: "bad id", mutate: func(b *builder.SlotBuilder) { b.WithSlotID("no spaces") }, field: "slot_id"},
			{name: "no zone", mutate: func(b *builder.SlotBuilder) { b.WithZoneID("") }, field: "zone_id"},
			{name: "bad polygon", mutate: func(b *builder.SlotBuilder) { b.Polygon = json.RawMessage(`"x"`) }, field: "polygon"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.slots.CreateSlot(ctx, builder.NewSlotBuilder().With(tc.mutate).BuildCreateInput())
				var invalid *errs.InvalidArgumentError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tc.field, invalid.Field)
			})
		}
	})
}

func TestUpdateSlot(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "slot_001")

	zone := "zone_b"
	s, err := f.slots.UpdateSlot(ctx, "slot_001", commands.UpdateSlotInput{ZoneID: &zone})
	require.NoError(t, err)
	assert.Equal(t, "zone_b", s.ZoneID())

	_, err = f.slots.UpdateSlot(ctx, "ghost", commands.UpdateSlotInput{ZoneID: &zone})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	want := []event.Type{event.TypeSlotCreated, event.TypeSlotUpdated}
	if diff := cmp.Diff(want, f.eventTypes(t, "slot_001")); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSeedSlots(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "slot_002")

	created, err := f.slots.SeedSlots(ctx, "zone_a", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, created, "existing slot_002 is skipped")

	again, err := f.slots.SeedSlots(ctx, "zone_a", 3)
	require.NoError(t, err)
	assert.Zero(t, again)
}
