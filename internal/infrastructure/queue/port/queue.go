package port

import (
	"context"
	"time"
)

// Task is a durable unit of background work: a stable type identifier plus an
// opaque payload. Payload encoding is up to callers; the port stays free of
// serialization concerns.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. Returning a non-nil error signals retry per the
// adapter's policy, so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption controls enqueue behavior. Zero values mean "unspecified";
// adapters map supported fields to the backend best-effort.
type EnqueueOption struct {
	Queue     string        // logical queue name
	ProcessIn time.Duration // delay before processing
	MaxRetry  int           // max retries for the task
	UniqueTTL time.Duration // enforce uniqueness within TTL window
	Retention time.Duration // keep result metadata for this duration
}

// Client enqueues tasks for background processing. Enqueued tasks survive
// process restarts.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs background workers that handle tasks. Run blocks until the
// context is canceled, then drains gracefully.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}
