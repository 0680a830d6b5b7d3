package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesAll(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	pool := NewWorkerPool(func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.Path)
		mu.Unlock()
		if job.Path == "bad.pdf" {
			return errors.New("boom")
		}
		return nil
	}, nil, WithWorkers(3), WithQueueSize(4))
	pool.Start(context.Background())

	for _, p := range []string{"a.pdf", "b.pdf", "bad.pdf", "c.pdf", "d.txt"} {
		require.NoError(t, pool.Enqueue(context.Background(), Job{Path: p}))
	}
	pool.Shutdown(context.Background())

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "bad.pdf", "c.pdf", "d.txt"}, seen)
	assert.Equal(t, Stats{Processed: 4, Failed: 1}, pool.Stats())
}

func TestWorkerPoolFillsJobDefaults(t *testing.T) {
	got := make(chan Job, 1)
	pool := NewWorkerPool(func(_ context.Context, job Job) error {
		got <- job
		return nil
	}, nil, WithWorkers(1), WithQueueSize(1))
	pool.Start(context.Background())
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "x.pdf"}))
	pool.Shutdown(context.Background())

	job := <-got
	assert.NotEmpty(t, job.TraceID)
	assert.False(t, job.SubmittedAt.IsZero())
}

func TestWorkerPoolEnqueueAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(func(context.Context, Job) error { return nil }, nil)
	pool.Start(context.Background())
	pool.Shutdown(context.Background())
	pool.Shutdown(context.Background())

	assert.ErrorIs(t, pool.Enqueue(context.Background(), Job{Path: "late.pdf"}), ErrClosed)
}

func TestWorkerPoolEnqueueHonoursContext(t *testing.T) {
	pool := NewWorkerPool(func(context.Context, Job) error { return nil }, nil, WithQueueSize(0))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// not started: nobody receives from the unbuffered channel
	err := pool.Enqueue(ctx, Job{Path: "stuck.pdf"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPoolShutdownDeadlineCancelsJobs(t *testing.T) {
	started := make(chan struct{})
	pool := NewWorkerPool(func(ctx context.Context, _ Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, nil, WithWorkers(1), WithQueueSize(2))
	pool.Start(context.Background())
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "slow.pdf"}))
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "queued.pdf"}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	pool.Shutdown(ctx)

	assert.Equal(t, Stats{Processed: 0, Failed: 2}, pool.Stats())
}

func TestWorkerPoolProcessTimeout(t *testing.T) {
	pool := NewWorkerPool(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil, WithProcessTimeout(10*time.Millisecond))
	pool.Start(context.Background())
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "slow.pdf"}))
	pool.Shutdown(context.Background())

	assert.Equal(t, Stats{Failed: 1}, pool.Stats())
}
