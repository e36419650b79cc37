package driven

import (
	"context"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

// TaskQueue handles background ingestion task queuing.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout. Returns nil, nil if the timeout elapses with no tasks.
	// The task is claimed and will not be delivered to other workers
	// until nacked.
	DequeueWithTimeout(ctx context.Context, timeout time.Duration) (*domain.Task, error)

	// Ack acknowledges successful completion of a task.
	Ack(ctx context.Context, taskID string) error

	// Nack indicates task processing failed; the task is requeued with an
	// incremented retry count.
	Nack(ctx context.Context, taskID string, reason string) error

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}
