// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
)

var (
	// ErrQueueFull is returned when a bounded queue cannot take another job.
	ErrQueueFull = errors.New("media: job queue is full")

	// ErrQueueClosed is returned by Dequeue after the queue was closed.
	ErrQueueClosed = errors.New("media: job queue is closed")
)

// Enqueuer is the producer side used by the request path.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// Queue is a job transport with at-least-once delivery to a single consumer group.
type Queue interface {
	Enqueuer

	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*Delivery, error)
}

// Delivery is one dequeued job. Ack removes it from the transport for good.
type Delivery struct {
	Job Job
	ack func(ctx context.Context) error
}

// Ack confirms the job was handled, successfully or not.
func (delivery *Delivery) Ack(ctx context.Context) error {
	if delivery.ack == nil {
		return nil
	}
	return delivery.ack(ctx)
}
