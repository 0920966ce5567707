package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(func(context.Context) error { return nil }, Config{}, nil)

	assert.Regexp(t, `^worker-[0-9a-f]{8}$`, w.config.WorkerID)
	assert.Equal(t, time.Minute, w.config.PollInterval)
}

func TestWorker_Start_RunsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	w := NewWorker(func(context.Context) error {
		if runs.Add(1) == 3 {
			cancel()
		}
		return nil
	}, Config{Name: "test", PollInterval: time.Millisecond}, quietLogger())

	err := w.Start(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestWorker_Start_KeepsRunningAfterFailure(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	w := NewWorker(func(context.Context) error {
		if runs.Add(1) >= 2 {
			cancel()
		}
		return errors.New("boom")
	}, Config{PollInterval: time.Millisecond}, quietLogger())

	require.ErrorIs(t, w.Start(ctx), context.Canceled)
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestWorker_RunOnce_Timeout(t *testing.T) {
	var deadline bool
	w := NewWorker(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	}, Config{PollInterval: time.Hour, Timeout: time.Second}, quietLogger())

	w.runOnce(context.Background())

	assert.True(t, deadline)
}
