package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"conferencecentral/internal/domain"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 256
	// taskTimeout bounds a single handler run.
	taskTimeout = 30 * time.Second
)

// Config holds configuration for the task queue.
type Config struct {
	Workers   int
	QueueSize int
}

type task struct {
	id     string
	kind   domain.TaskKind
	params map[string]string
}

// Queue is an in-process TaskQueue served by a fixed pool of workers.
// Tasks are lost on shutdown once the queue is closed and drained.
type Queue struct {
	logger  *slog.Logger
	workers int
	ch      chan task

	mu       sync.RWMutex
	closed   bool
	handlers map[domain.TaskKind]domain.TaskHandler
}

var _ domain.TaskQueue = (*Queue)(nil)

// NewQueue returns a queue; call Run to start its workers.
func NewQueue(config Config, logger *slog.Logger) *Queue {
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	return &Queue{
		logger:   logger.With("component", "TaskQueue"),
		workers:  config.Workers,
		ch:       make(chan task, config.QueueSize),
		handlers: make(map[domain.TaskKind]domain.TaskHandler),
	}
}

// Register sets the handler for kind, replacing any previous one.
func (q *Queue) Register(kind domain.TaskKind, handler domain.TaskHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[kind] = handler
}

// Submit enqueues a task without blocking. A full or closed queue drops the task.
func (q *Queue) Submit(kind domain.TaskKind, params map[string]string) {
	t := task{id: uuid.NewString(), kind: kind, params: params}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("task dropped, queue closed", "task_id", t.id, "kind", kind)
		return
	}
	select {
	case q.ch <- t:
		q.logger.Debug("task queued", "task_id", t.id, "kind", kind)
	default:
		q.logger.Warn("task dropped, queue full", "task_id", t.id, "kind", kind)
	}
}

// Run processes tasks until the queue is closed and drained or ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for range q.workers {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case t, ok := <-q.ch:
					if !ok {
						return nil
					}
					q.process(gctx, t)
				}
			}
		})
	}
	return g.Wait()
}

// Close stops accepting tasks. Workers finish what is already queued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}

func (q *Queue) process(ctx context.Context, t task) {
	q.mu.RLock()
	handler, ok := q.handlers[t.kind]
	q.mu.RUnlock()
	if !ok {
		q.logger.Warn("no handler registered for task", "task_id", t.id, "kind", t.kind)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return handler(ctx, t.params)
	}()
	if err != nil {
		q.logger.ErrorContext(ctx, "task failed", "task_id", t.id, "kind", t.kind, "err", err)
		return
	}
	q.logger.DebugContext(ctx, "task done", "task_id", t.id, "kind", t.kind, "duration_ms", time.Since(start).Milliseconds())
}
