//go:build unit

package occupancy_test

import (
	"testing"
	"time"

	"parking-hold-engine/internal/domain/occupancy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestBlocksHold(t *testing.T) {
	testCases := []struct {
		name       string
		occupied   bool
		confidence float64
		expected   bool
	}{
		{name: "free slot", occupied: false, confidence: 0.99, expected: false},
		{name: "occupied below threshold", occupied: true, confidence: 0.59, expected: false},
		{name: "occupied at threshold", occupied: true, confidence: 0.6, expected: true},
		{name: "occupied above threshold", occupied: true, confidence: 0.9, expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := occupancy.NewRecord("slot_001", t0)
			r.Occupied = tc.occupied
			r.Confidence = tc.confidence
			assert.Equal(t, tc.expected, r.BlocksHold(0.6))
		})
	}
}

func TestIsReserved(t *testing.T) {
	r := occupancy.NewRecord("slot_001", t0)
	assert.False(t, r.IsReserved(t0), "no reservation")

	until := t0.Add(2 * time.Minute)
	r.ReservedUntil = &until
	assert.True(t, r.IsReserved(t0))
	assert.False(t, r.IsReserved(until), "reservation ends at its deadline")
	assert.False(t, r.IsReserved(until.Add(time.Second)))
}

func TestApplySensing(t *testing.T) {
	car := "car"
	truck := "truck"

	t.Run("first sighting is a change", func(t *testing.T) {
		r := occupancy.NewRecord("slot_001", t0)
		changed, err := r.ApplySensing(occupancy.Sensing{Occupied: false, Confidence: 0.9}, t0)
		require.NoError(t, err)
		assert.True(t, changed)
		require.NotNil(t, r.LastSeen)
		assert.Equal(t, t0, *r.LastSeen)
	})

	t.Run("confidence drift alone is not a change", func(t *testing.T) {
		r := occupancy.NewRecord("slot_001", t0)
		_, err := r.ApplySensing(occupancy.Sensing{Occupied: true, Confidence: 0.7, VehicleType: &car}, t0)
		require.NoError(t, err)

		changed, err := r.ApplySensing(occupancy.Sensing{Occupied: true, Confidence: 0.95, VehicleType: &car}, t0.Add(time.Second))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 0.95, r.Confidence)
	})

	t.Run("vehicle type change is a change", func(t *testing.T) {
		r := occupancy.NewRecord("slot_001", t0)
		_, err := r.ApplySensing(occupancy.Sensing{Occupied: true, Confidence: 0.7, VehicleType: &car}, t0)
		require.NoError(t, err)

		changed, err := r.ApplySensing(occupancy.Sensing{Occupied: true, Confidence: 0.7, VehicleType: &truck}, t0)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("out of range confidence leaves the record untouched", func(t *testing.T) {
		r := occupancy.NewRecord("slot_001", t0)
		changed, err := r.ApplySensing(occupancy.Sensing{Occupied: true, Confidence: 1.2}, t0)
		assert.ErrorIs(t, err, occupancy.ErrInvalidConfidence)
		assert.False(t, changed)
		assert.False(t, r.Occupied)
		assert.Nil(t, r.LastSeen)
	})

	t.Run("never touches reserved_until", func(t *testing.T) {
		r := occupancy.NewRecord("slot_001", t0)
		until := t0.Add(time.Minute)
		r.ReservedUntil = &until
		_, err := r.ApplySensing(occupancy.Sensing{Occupied: true, Confidence: 0.9}, t0)
		require.NoError(t, err)
		assert.Equal(t, &until, r.ReservedUntil)
	})
}

func TestApplyPrediction(t *testing.T) {
	r := occupancy.NewRecord("slot_001", t0)

	assert.ErrorIs(t, r.ApplyPrediction(-1, 0.5, t0), occupancy.ErrInvalidPrediction)
	assert.ErrorIs(t, r.ApplyPrediction(occupancy.MaxPredictedFreeMinutes+1, 0.5, t0), occupancy.ErrInvalidPrediction)
	assert.ErrorIs(t, r.ApplyPrediction(1<<32, 0.5, t0), occupancy.ErrInvalidPrediction)
	assert.ErrorIs(t, r.ApplyPrediction(5, -0.1, t0), occupancy.ErrInvalidConfidence)
	assert.Nil(t, r.PredictedFreeMinutes)

	require.NoError(t, r.ApplyPrediction(12, 0.8, t0.Add(time.Minute)))
	assert.Equal(t, 12, *r.PredictedFreeMinutes)
	assert.Equal(t, 0.8, *r.PredictionConfidence)
	assert.Equal(t, t0.Add(time.Minute), r.UpdatedAt)
}
