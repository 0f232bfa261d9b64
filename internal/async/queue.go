// Package async runs documents through a processor on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by Enqueue once shutdown has begun.
var ErrClosed = errors.New("queue is shutting down")

// Job is one document handed to the pool.
type Job struct {
	Path        string
	SubmittedAt time.Time
	RunID       string
}

// Processor handles one job. Errors are logged; they do not stop the worker.
type Processor interface {
	Process(ctx context.Context, path string) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, path string) error

func (f ProcessorFunc) Process(ctx context.Context, path string) error { return f(ctx, path) }

type Queue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	wrap    func(context.Context, Job) context.Context

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithContext decorates each job's context, e.g. with a run id.
func WithContext(fn func(context.Context, Job) context.Context) Option {
	return func(q *Queue) {
		if fn != nil {
			q.wrap = fn
		}
	}
}

// NewQueue starts the workers. The default single worker keeps documents strictly sequential.
func NewQueue(proc Processor, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 1,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 256),
		wrap:    func(ctx context.Context, _ Job) context.Context { return ctx },
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(q.wrap(context.Background(), job), q.timeout)
					err := q.proc.Process(ctx, job.Path)
					cancel()

					if err != nil {
						q.logger.Error("queue.job.failed", "worker_id", workerID, "file", job.Path, "error", err)
					} else {
						q.logger.Info("queue.job.ok", "worker_id", workerID, "file", job.Path,
							"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the buffer is full, until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected", "file", job.Path)
		return ErrClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueue.ok", "file", job.Path)
		return nil
	default:
	}
	q.logger.Warn("queue.full.backpressure", "file", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Accepting reports whether Enqueue still takes work.
func (q *Queue) Accepting() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return !q.closed
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
