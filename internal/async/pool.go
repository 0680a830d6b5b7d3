package async

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
)

// Stats counts finished jobs.
type Stats struct {
	Processed int64
	Failed    int64
}

// WorkerPool is a bounded Queue served by a fixed number of workers. Each job
// runs on exactly one worker.
type WorkerPool struct {
	jobs    chan Job
	handler Handler
	workers int
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc

	processed atomic.Int64
	failed    atomic.Int64
}

var _ Queue = (*WorkerPool)(nil)

type Option func(*WorkerPool)

func WithWorkers(n int) Option {
	return func(p *WorkerPool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets the buffer; 0 makes Enqueue hand jobs directly to a worker.
func WithQueueSize(n int) Option {
	return func(p *WorkerPool) {
		if n >= 0 {
			p.jobs = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(p *WorkerPool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewWorkerPool(handler Handler, logger *slog.Logger, opts ...Option) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &WorkerPool{
		handler: handler,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		jobs:    make(chan Job, 64),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start launches the workers. Cancelling ctx aborts in-flight jobs.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, i+1)
	}
	p.logger.Info("queue.started", "workers", p.workers, "buffer", cap(p.jobs))
}

func (p *WorkerPool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	logger := p.logger.With("worker", id)
	for job := range p.jobs {
		if ctx.Err() != nil {
			p.failed.Add(1)
			logger.Warn("queue.job.dropped", "path", job.Path, "trace_id", job.TraceID)
			continue
		}
		start := time.Now()
		jctx, cancel := context.WithTimeout(common.WithLogger(ctx, logger.With("trace_id", job.TraceID)), p.timeout)
		err := p.handler(jctx, job)
		cancel()
		if err != nil {
			p.failed.Add(1)
			logger.Error("queue.job.failed", "path", job.Path, "trace_id", job.TraceID, "error", err)
			continue
		}
		p.processed.Add(1)
		logger.Info("queue.job.ok", "path", job.Path, "trace_id", job.TraceID,
			"wait_ms", start.Sub(job.SubmittedAt).Milliseconds(), "took_ms", time.Since(start).Milliseconds())
	}
}

// Enqueue blocks until the job is buffered, ctx is done or the pool is shut down.
func (p *WorkerPool) Enqueue(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for the buffered ones to drain. When ctx
// ends first the in-flight jobs are cancelled and the rest are dropped.
func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if p.cancel != nil {
			p.cancel()
		}
		<-done
	}
	if p.cancel != nil {
		p.cancel()
	}
	st := p.Stats()
	p.logger.Info("queue.stopped", "processed", st.Processed, "failed", st.Failed)
}

func (p *WorkerPool) Stats() Stats {
	return Stats{Processed: p.processed.Load(), Failed: p.failed.Load()}
}
