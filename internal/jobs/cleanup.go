// Package jobs defines the periodic maintenance jobs run by the server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/coffee-delivery/internal/worker"
)

// Job type constants for cleanup jobs
const (
	JobTypeCleanupExpiredSessions = "cleanup:expired_sessions"
	JobTypeCleanupRateLimits      = "cleanup:rate_limit_entries"
)

// SessionSweeper removes idle sessions.
type SessionSweeper interface {
	Sweep(ctx context.Context) error
}

// RateLimitPruner drops idle rate limiter entries and reports how many.
type RateLimitPruner interface {
	Cleanup() int
}

// CleanupConfig sets how often each cleanup job runs.
type CleanupConfig struct {
	SessionInterval   time.Duration
	RateLimitInterval time.Duration

	// Timeout bounds a single run of either job
	Timeout time.Duration
}

// NewCleanupWorkers returns one worker per cleanup job. A nil sweeper or
// pruner skips its job.
func NewCleanupWorkers(sessions SessionSweeper, limiter RateLimitPruner, cfg CleanupConfig, logger *slog.Logger) []*worker.Worker {
	if logger == nil {
		logger = slog.Default()
	}

	var workers []*worker.Worker
	if sessions != nil {
		workers = append(workers, worker.NewWorker(sessions.Sweep, worker.Config{
			Name:         JobTypeCleanupExpiredSessions,
			PollInterval: cfg.SessionInterval,
			Timeout:      cfg.Timeout,
		}, logger))
	}
	if limiter != nil {
		workers = append(workers, worker.NewWorker(PruneRateLimits(limiter, logger), worker.Config{
			Name:         JobTypeCleanupRateLimits,
			PollInterval: cfg.RateLimitInterval,
			Timeout:      cfg.Timeout,
		}, logger))
	}
	return workers
}

// PruneRateLimits returns a task that drops idle rate limiter entries.
func PruneRateLimits(limiter RateLimitPruner, logger *slog.Logger) worker.Task {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n := limiter.Cleanup(); n > 0 {
			logger.Debug("rate limiter entries dropped", "count", n)
		}
		return nil
	}
}
