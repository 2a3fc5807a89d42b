package scheduler

import (
	"context"
	"log/slog"
	"time"

	"wpfeed/internal/domain"
)

// Runner performs one feed run.
type Runner interface {
	Run(ctx context.Context) (*domain.FeedStats, error)
}

// Scheduler runs the feed once at start and then on every tick, each run
// bounded by its own timeout.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	failures int
}

func NewScheduler(runner Runner, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("feed scheduler started",
		"interval", s.interval,
		"run_timeout", s.timeout,
	)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("feed scheduler stopped", "consecutive_failures", s.failures)
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce reports whether the run published everything it read.
func (s *Scheduler) runOnce(ctx context.Context) bool {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.runner.Run(runCtx)
	if err != nil {
		s.failures++
		s.logger.Error("feed run failed",
			"error", err,
			"consecutive_failures", s.failures,
		)
		return false
	}

	// A publish failure leaves the rest of the batch for the next tick.
	if stats != nil && stats.Errors > 0 {
		s.failures++
		s.logger.Warn("feed run incomplete",
			"feed", stats.FeedID,
			"read", stats.Read,
			"published", stats.Published,
			"pending", stats.Read-stats.Published,
			"consecutive_failures", s.failures,
		)
		return false
	}

	if s.failures > 0 {
		s.logger.Info("feed run recovered", "after_failures", s.failures)
	}
	s.failures = 0
	return true
}
