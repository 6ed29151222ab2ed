//go:build unit

package expiry_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/worker/expiry"
	commandsmock "parking-hold-engine/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingExpirer struct {
	calls atomic.Int32
}

func (e *countingExpirer) ExpireStale(ctx context.Context, limit int) (int, error) {
	e.calls.Add(1)
	return 0, ctx.Err()
}

func TestRunOnce(t *testing.T) {
	t.Run("passes the configured batch size", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := commandsmock.NewMockHoldCommands(ctrl)
		ledger.EXPECT().ExpireStale(gomock.Any(), 25).Return(3, nil).Times(1)

		s := expiry.NewSweeper(ledger, config.SweeperConfig{Interval: time.Second, BatchSize: 25}, discard)
		n, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("defaults the batch size", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := commandsmock.NewMockHoldCommands(ctrl)
		ledger.EXPECT().ExpireStale(gomock.Any(), 100).Return(0, nil).Times(1)

		s := expiry.NewSweeper(ledger, config.SweeperConfig{}, discard)
		_, err := s.RunOnce(context.Background())
		require.NoError(t, err)
	})

	t.Run("surfaces ledger failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := commandsmock.NewMockHoldCommands(ctrl)
		boom := errors.New("storage unavailable")
		ledger.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).Return(0, boom).Times(1)

		s := expiry.NewSweeper(ledger, config.SweeperConfig{Interval: time.Second}, discard)
		_, err := s.RunOnce(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("each pass is bounded by the interval", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		ledger := commandsmock.NewMockHoldCommands(ctrl)
		ledger.EXPECT().ExpireStale(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ int) (int, error) {
				deadline, ok := ctx.Deadline()
				assert.True(t, ok)
				assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
				return 0, nil
			}).Times(1)

		s := expiry.NewSweeper(ledger, config.SweeperConfig{Interval: 50 * time.Millisecond}, discard)
		_, err := s.RunOnce(context.Background())
		require.NoError(t, err)
	})
}

func TestSweeper_StartStop(t *testing.T) {
	exp := &countingExpirer{}
	s := expiry.NewSweeper(exp, config.SweeperConfig{Interval: 10 * time.Millisecond, BatchSize: 10}, discard)

	s.Start()
	s.Start()

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	after := exp.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, exp.calls.Load(), "no passes after Stop")

	assert.NoError(t, s.Stop(ctx), "second Stop is a no-op")
}
