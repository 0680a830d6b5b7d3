package async

import (
	"context"
	"errors"
	"time"
)

// Job is one source file to extract.
type Job struct {
	Path        string
	Force       bool // process even when the content was already seen
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes one job. Its error is logged and counted; it never stops the queue.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("queue closed")
