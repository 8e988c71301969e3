package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/quartz"
)

const (
	defaultInterval     = 30 * time.Second
	defaultFinalTimeout = 10 * time.Second

	// TickerTag names the sweep ticker for clock traps in tests.
	TickerTag = "sweep"
)

// Cleaner prunes expired presence entries and reports how many were removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// Scheduler runs Cleanup on a fixed interval. Each sweep is independent;
// a failed sweep is logged and the next tick tries again.
type Scheduler struct {
	interval     time.Duration
	cleaner      Cleaner
	clock        quartz.Clock
	finalTimeout time.Duration
}

// NewScheduler creates a sweep scheduler. A nil clock uses the real clock.
func NewScheduler(interval time.Duration, cleaner Cleaner, clock quartz.Clock) *Scheduler {
	if cleaner == nil {
		panic("sweep: cleaner must not be nil")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Scheduler{
		interval:     interval,
		cleaner:      cleaner,
		clock:        clock,
		finalTimeout: defaultFinalTimeout,
	}
}

// Start sweeps once immediately, then on every tick until ctx is cancelled,
// then once more with a bounded context before returning.
func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("[Sweeper] Starting presence sweeper", "interval", s.interval)

	s.sweep(ctx)

	ticker := s.clock.TickerFunc(ctx, s.interval, func() error {
		s.sweep(ctx)
		return nil
	}, TickerTag)
	_ = ticker.Wait()

	slog.Info("[Sweeper] Stopping (context cancelled)")

	finalCtx, cancel := context.WithTimeout(context.Background(), s.finalTimeout)
	defer cancel()
	s.sweep(finalCtx)
	slog.Info("[Sweeper] Final sweep complete")

	return nil
}

func (s *Scheduler) sweep(ctx context.Context) {
	start := s.clock.Now()
	removed, err := s.cleaner.Cleanup(ctx)
	if err != nil {
		slog.Error("[Sweeper] Sweep failed", "error", err, "removed", removed)
		return
	}
	slog.Debug("[Sweeper] Sweep complete", "removed", removed, "duration", s.clock.Since(start))
}
