//go:build unit

package hold_test

import (
	"testing"
	"time"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestNewHold(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		userID := uuid.New()
		actual, err := builder.NewHoldBuilder().WithUserID(userID).WithNow(t0).BuildDomain()
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "slot_001", actual.SlotID())
		assert.Equal(t, hold.StatusHolding, actual.Status())
		assert.Equal(t, t0.Add(2*time.Minute), actual.HoldUntil())
		assert.Nil(t, actual.ConfirmedAt())
		assert.Equal(t, &userID, actual.UserID())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
	})

	testCases := []struct {
		name   string
		mutate func(*builder.HoldBuilder)
		errIs  error
	}{
		{name: "minimum duration", mutate: func(b *builder.HoldBuilder) { b.WithMinutes(1) }},
		{name: "maximum duration", mutate: func(b *builder.HoldBuilder) { b.WithMinutes(60) }},
		{name: "zero minutes", mutate: func(b *builder.HoldBuilder) { b.WithMinutes(0) }, errIs: hold.ErrInvalidDuration},
		{name: "above maximum", mutate: func(b *builder.HoldBuilder) { b.WithMinutes(61) }, errIs: hold.ErrInvalidDuration},
		{name: "negative", mutate: func(b *builder.HoldBuilder) { b.WithMinutes(-5) }, errIs: hold.ErrInvalidDuration},
		{name: "empty slot id", mutate: func(b *builder.HoldBuilder) { b.WithSlotID("") }, errIs: hold.ErrInvalidSlotID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.NewHoldBuilder().With(tc.mutate).BuildDomain()
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestEffectiveStatus(t *testing.T) {
	b := builder.NewHoldBuilder().WithNow(t0).WithMinutes(2)
	deadline := t0.Add(2 * time.Minute)

	testCases := []struct {
		name     string
		status   hold.Status
		at       time.Time
		expected hold.Status
	}{
		{name: "holding before deadline", status: hold.StatusHolding, at: t0.Add(time.Minute), expected: hold.StatusHolding},
		{name: "holding exactly at deadline", status: hold.StatusHolding, at: deadline, expected: hold.StatusHolding},
		{name: "holding one nanosecond past deadline", status: hold.StatusHolding, at: deadline.Add(time.Nanosecond), expected: hold.StatusExpired},
		{name: "confirmed long after deadline", status: hold.StatusConfirmed, at: deadline.Add(3 * time.Hour), expected: hold.StatusConfirmed},
		{name: "cancelled stays cancelled", status: hold.StatusCancelled, at: deadline.Add(time.Hour), expected: hold.StatusCancelled},
		{name: "released stays released", status: hold.StatusReleased, at: deadline.Add(time.Hour), expected: hold.StatusReleased},
		{name: "persisted expired", status: hold.StatusExpired, at: t0, expected: hold.StatusExpired},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := b.BuildPersisted(tc.status)
			assert.Equal(t, tc.expected, hold.EffectiveStatus(h, tc.at))
		})
	}

	t.Run("does not mutate the hold", func(t *testing.T) {
		h := b.BuildPersisted(hold.StatusHolding)
		before := h.Clone()
		_ = hold.EffectiveStatus(h, deadline.Add(time.Hour))
		assert.Equal(t, before.Status(), h.Status())
		assert.Equal(t, before.UpdatedAt(), h.UpdatedAt())
	})
}

func TestHoldTransitions(t *testing.T) {
	type step func(h *hold.Hold, now time.Time) error

	confirm := func(h *hold.Hold, now time.Time) error { return h.Confirm(now) }
	cancel := func(h *hold.Hold, now time.Time) error { return h.Cancel(now) }
	release := func(h *hold.Hold, now time.Time) error { return h.Release(now) }
	expire := func(h *hold.Hold, now time.Time) error { return h.Expire(now) }

	inTime := t0.Add(time.Minute)
	late := t0.Add(3 * time.Minute)

	testCases := []struct {
		name     string
		from     hold.Status
		op       step
		at       time.Time
		errIs    error
		expected hold.Status
	}{
		{name: "confirm holding", from: hold.StatusHolding, op: confirm, at: inTime, expected: hold.StatusConfirmed},
		{name: "cancel holding", from: hold.StatusHolding, op: cancel, at: inTime, expected: hold.StatusCancelled},
		{name: "expire stale holding", from: hold.StatusHolding, op: expire, at: late, expected: hold.StatusExpired},
		{name: "release confirmed", from: hold.StatusConfirmed, op: release, at: late, expected: hold.StatusReleased},
		{name: "confirm stale holding", from: hold.StatusHolding, op: confirm, at: late, errIs: hold.ErrHoldExpired, expected: hold.StatusHolding},
		{name: "cancel stale holding", from: hold.StatusHolding, op: cancel, at: late, errIs: hold.ErrHoldExpired, expected: hold.StatusHolding},
		{name: "expire fresh holding", from: hold.StatusHolding, op: expire, at: inTime, errIs: hold.ErrInvalidTransition, expected: hold.StatusHolding},
		{name: "release holding", from: hold.StatusHolding, op: release, at: inTime, errIs: hold.ErrInvalidTransition, expected: hold.StatusHolding},
		{name: "confirm confirmed", from: hold.StatusConfirmed, op: confirm, at: inTime, errIs: hold.ErrInvalidTransition, expected: hold.StatusConfirmed},
		{name: "cancel confirmed", from: hold.StatusConfirmed, op: cancel, at: inTime, errIs: hold.ErrInvalidTransition, expected: hold.StatusConfirmed},
		{name: "cancel cancelled", from: hold.StatusCancelled, op: cancel, at: inTime, errIs: hold.ErrInvalidTransition, expected: hold.StatusCancelled},
		{name: "confirm expired", from: hold.StatusExpired, op: confirm, at: inTime, errIs: hold.ErrInvalidTransition, expected: hold.StatusExpired},
		{name: "release released", from: hold.StatusReleased, op: release, at: late, errIs: hold.ErrInvalidTransition, expected: hold.StatusReleased},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := builder.NewHoldBuilder().WithNow(t0).BuildPersisted(tc.from)
			err := tc.op(h, tc.at)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.at, h.UpdatedAt())
			}
			assert.Equal(t, tc.expected, h.Status())
		})
	}

	t.Run("confirm stamps confirmed_at", func(t *testing.T) {
		h, err := builder.NewHoldBuilder().WithNow(t0).BuildDomain()
		require.NoError(t, err)
		require.NoError(t, h.Confirm(inTime))
		require.NotNil(t, h.ConfirmedAt())
		assert.Equal(t, inTime, *h.ConfirmedAt())
	})

	t.Run("terminal statuses have no successors", func(t *testing.T) {
		all := []hold.Status{hold.StatusHolding, hold.StatusConfirmed, hold.StatusExpired, hold.StatusCancelled, hold.StatusReleased}
		for _, from := range []hold.Status{hold.StatusExpired, hold.StatusCancelled, hold.StatusReleased} {
			assert.True(t, from.IsTerminal())
			for _, to := range all {
				assert.False(t, hold.CanTransition(from, to), "%s -> %s", from, to)
			}
		}
	})
}

func TestHoldClone(t *testing.T) {
	h := builder.NewHoldBuilder().WithUserID(uuid.New()).WithNow(t0).BuildPersisted(hold.StatusConfirmed)
	c := h.Clone()

	opts := cmp.AllowUnexported(hold.Hold{})
	if diff := cmp.Diff(h, c, opts); diff != "" {
		t.Errorf("clone mismatch (-want +got):\n%s", diff)
	}
	assert.NotSame(t, h.UserID(), c.UserID())
	assert.NotSame(t, h.ConfirmedAt(), c.ConfirmedAt())
}
