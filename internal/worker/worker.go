// Package worker runs periodic background tasks.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// Name describes the task in logs
	Name string

	// PollInterval is how often the task runs
	PollInterval time.Duration

	// Timeout bounds a single run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Worker runs a task on a fixed interval.
type Worker struct {
	config Config
	task   Task
	logger *slog.Logger
}

// NewWorker creates a new background worker
func NewWorker(task Task, config Config, logger *slog.Logger) *Worker {
	// Set defaults
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config: config,
		task:   task,
		logger: logger.With("worker_id", config.WorkerID, "task", config.Name),
	}
}

// Start runs the task every PollInterval until the context is cancelled.
// Runs never overlap; a slow run delays the next tick.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting", "poll_interval", w.config.PollInterval)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down")
			return ctx.Err()

		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if w.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.task(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error("task failed", "error", err, "duration", time.Since(start))
		return
	}
	w.logger.Debug("task completed", "duration", time.Since(start))
}
