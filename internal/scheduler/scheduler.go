// Package scheduler runs periodic jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cron "github.com/robfig/cron/v3"
)

// DefaultAnnouncementSchedule refreshes the announcement hourly.
const DefaultAnnouncementSchedule = "@every 1h"

const jobTimeout = time.Minute

// Job is a unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron with context-aware, logged jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "Scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add installs job under name on spec, which may be a standard five-field
// expression or a descriptor such as "@every 1h".
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s with %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()
	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", name, "err", err)
		return
	}
	s.logger.DebugContext(ctx, "job done", "job", name, "duration_ms", time.Since(start).Milliseconds())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
