package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tagmarks/tagmarks-server/internal/id"
)

// EnrichmentConfig sizes the enrichment worker pool.
type EnrichmentConfig struct {
	Enabled    bool
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// DefaultEnrichmentConfig returns the defaults used when config is empty.
func DefaultEnrichmentConfig() EnrichmentConfig {
	return EnrichmentConfig{
		Enabled:    true,
		Workers:    4,
		QueueSize:  256,
		JobTimeout: 45 * time.Second,
	}
}

// EnrichFunc processes one bookmark in the background.
type EnrichFunc func(ctx context.Context, bookmarkID string) error

type enrichJob struct {
	label      string
	bookmarkID string
	queuedAt   time.Time
}

// EnrichmentQueue runs bookmark enrichment on a bounded worker pool.
// Enqueue never blocks: when the buffer is full the job is dropped.
// Each job runs under its own timeout and panics are contained.
type EnrichmentQueue struct {
	cfg    EnrichmentConfig
	run    EnrichFunc
	logger *slog.Logger

	// Worker management
	ctx    context.Context //nolint:containedctx // worker lifecycle
	cancel context.CancelFunc
	jobs   chan enrichJob
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewEnrichmentQueue creates a queue. Call Start to launch the workers.
func NewEnrichmentQueue(cfg EnrichmentConfig, run EnrichFunc, logger *slog.Logger) *EnrichmentQueue {
	defaults := DefaultEnrichmentConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaults.JobTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EnrichmentQueue{
		cfg:    cfg,
		run:    run,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan enrichJob, cfg.QueueSize),
	}
}

// Start launches the workers. It is a no-op when enrichment is disabled
// or the queue already runs.
func (q *EnrichmentQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.cfg.Enabled || q.started || q.closed {
		if !q.cfg.Enabled {
			q.logger.Info("bookmark enrichment disabled, not starting workers")
		}
		return
	}
	q.started = true

	q.logger.Info("starting enrichment workers",
		slog.Int("workers", q.cfg.Workers),
		slog.Int("queue_size", q.cfg.QueueSize),
	)
	for i := range q.cfg.Workers {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Enqueue schedules enrichment of a bookmark and reports whether the job
// was accepted.
func (q *EnrichmentQueue) Enqueue(bookmarkID string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.cfg.Enabled || !q.started || q.closed {
		return false
	}

	job := enrichJob{label: id.Short(), bookmarkID: bookmarkID, queuedAt: time.Now()}
	select {
	case q.jobs <- job:
		q.logger.Debug("enrichment queued", "job", job.label, "bookmark_id", bookmarkID)
		return true
	default:
		q.logger.Warn("enrichment queue full, dropping job",
			"bookmark_id", bookmarkID,
			"queue_size", q.cfg.QueueSize,
		)
		return false
	}
}

// Enabled reports whether the queue accepts work at all.
func (q *EnrichmentQueue) Enabled() bool {
	return q.cfg.Enabled
}

// Capacity returns the buffer size.
func (q *EnrichmentQueue) Capacity() int {
	return q.cfg.QueueSize
}

// Pending returns the number of queued jobs not yet picked up.
func (q *EnrichmentQueue) Pending() int {
	return len(q.jobs)
}

// Shutdown stops accepting jobs and waits for queued and in-flight jobs to
// finish. If ctx ends first, running jobs are canceled and ctx's error is
// returned.
func (q *EnrichmentQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.logger.Info("stopping enrichment workers", "pending", len(q.jobs))

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("enrichment workers stopped")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return fmt.Errorf("enrichment shutdown: %w", ctx.Err())
	}
}

func (q *EnrichmentQueue) worker(n int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(n, job)
	}
}

func (q *EnrichmentQueue) process(worker int, job enrichJob) {
	ctx, cancel := context.WithTimeout(q.ctx, q.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("enrichment job panicked",
				"job", job.label,
				"bookmark_id", job.bookmarkID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	if err := q.run(ctx, job.bookmarkID); err != nil {
		q.logger.Warn("enrichment job failed",
			"job", job.label,
			"worker", worker,
			"bookmark_id", job.bookmarkID,
			"error", err,
		)
		return
	}

	q.logger.Debug("enrichment job done",
		"job", job.label,
		"worker", worker,
		"bookmark_id", job.bookmarkID,
		"waited", start.Sub(job.queuedAt),
		"took", time.Since(start),
	)
}
