package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct{ runs atomic.Int32 }

func (f *fakeSweeper) Sweep(ctx context.Context) error {
	f.runs.Add(1)
	return nil
}

type fakePruner struct{ runs atomic.Int32 }

func (f *fakePruner) Cleanup() int {
	f.runs.Add(1)
	return 3
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPruneRateLimits(t *testing.T) {
	p := &fakePruner{}
	task := PruneRateLimits(p, quietLogger())

	require.NoError(t, task(context.Background()))
	assert.Equal(t, int32(1), p.runs.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, task(ctx), context.Canceled)
	assert.Equal(t, int32(1), p.runs.Load(), "cancelled run must not prune")
}

func TestNewCleanupWorkers(t *testing.T) {
	sweeper := &fakeSweeper{}
	pruner := &fakePruner{}

	workers := NewCleanupWorkers(sweeper, pruner, CleanupConfig{
		SessionInterval:   5 * time.Millisecond,
		RateLimitInterval: 5 * time.Millisecond,
	}, quietLogger())
	require.Len(t, workers, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{}, len(workers))
	for _, w := range workers {
		go func() {
			_ = w.Start(ctx)
			done <- struct{}{}
		}()
	}

	assert.Eventually(t, func() bool {
		return sweeper.runs.Load() > 0 && pruner.runs.Load() > 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	for range workers {
		<-done
	}
}

func TestNewCleanupWorkers_SkipsNil(t *testing.T) {
	assert.Len(t, NewCleanupWorkers(nil, &fakePruner{}, CleanupConfig{}, nil), 1)
	assert.Len(t, NewCleanupWorkers(&fakeSweeper{}, nil, CleanupConfig{}, nil), 1)
	assert.Empty(t, NewCleanupWorkers(nil, nil, CleanupConfig{}, nil))
}
