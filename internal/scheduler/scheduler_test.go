package scheduler

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

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(testLogger)
	var runs atomic.Int32
	require.NoError(t, s.Add("refresh", "@every 1s", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("failures are logged")
	}))
	s.Start()

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New(testLogger)
	err := s.Add("refresh", "every now and then", func(ctx context.Context) error { return nil })
	require.Error(t, err)
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := New(testLogger)
	started := make(chan struct{})
	var once atomic.Bool
	require.NoError(t, s.Add("slow", "@every 1s", func(ctx context.Context) error {
		if once.CompareAndSwap(false, true) {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	}))
	s.Start()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
