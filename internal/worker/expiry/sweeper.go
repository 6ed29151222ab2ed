// Package expiry runs the active expiry sweep. Lazy expiry on every ledger path already keeps the
// slot invariant; the sweep only bounds how long a dead hold stays visible as holding.
package expiry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/pkg/metrics"
)

// Expirer is the slice of the ledger the sweeper drives.
type Expirer interface {
	ExpireStale(ctx context.Context, limit int) (int, error)
}

type Sweeper struct {
	expirer Expirer
	cfg     config.SweeperConfig
	logger  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

func NewSweeper(expirer Expirer, cfg config.SweeperConfig, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		expirer: expirer,
		cfg:     cfg,
		logger:  logger.With("component", "expiry-sweeper"),
	}
}

// Start launches Serve in the background. Calling Start twice is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_ = s.Serve(ctx)
	}()
}

// Stop cancels the loop and waits for the in-flight pass, or until ctx is done.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) Serve(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s.logger.Info("expiry sweeper starting", "interval", interval.String(), "batch_size", s.cfg.BatchSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper shutting down")
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("expiry sweep failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single sweep pass, bounded by one interval so a stuck pass cannot pile up.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	timeout := s.cfg.Interval
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	passCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	batch := s.cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}

	expired, err := s.expirer.ExpireStale(passCtx, batch)
	metrics.IncSweepRun(err)
	if expired > 0 {
		s.logger.Info("expiry sweep completed", "expired", expired)
	}
	return expired, err
}
