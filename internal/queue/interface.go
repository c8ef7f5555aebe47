package queue

import (
	"context"
	"time"
)

// MessageInterface abstracts a delivered queue message so handlers can be
// tested without a broker.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the broker-facing contract shared by the API server, which
// enqueues generation jobs, and the worker, which consumes them.
type JobQueue interface {
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue pulls at most one message. Returns nil when the queue is
	// empty. Consume is the preferred path for workers.
	Dequeue(ctx context.Context) (*Message, error)

	// Consume streams messages until ctx is cancelled or the channel
	// fails. prefetchCount bounds unacknowledged messages per consumer.
	// The caller must Ack or Nack every message.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error

	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered messages older than a retention period.
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
