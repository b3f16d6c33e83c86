// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"sync"
)

// MemoryQueue is a bounded in-process queue for single-binary deployments and tests.
// Jobs still pending at shutdown are lost.
type MemoryQueue struct {
	jobs      chan Job
	closeOnce sync.Once
	closed    chan struct{}
}

// NewMemoryQueue returns a queue holding at most capacity pending jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		jobs:   make(chan Job, max(capacity, 1)),
		closed: make(chan struct{}),
	}
}

// Enqueue never blocks: a full queue reports [ErrQueueFull].
func (queue *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-queue.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case queue.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Dequeue waits for the next job.
func (queue *MemoryQueue) Dequeue(ctx context.Context) (*Delivery, error) {
	select {
	case job := <-queue.jobs:
		return &Delivery{Job: job}, nil
	case <-queue.closed:
		return nil, ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of pending jobs.
func (queue *MemoryQueue) Len() int {
	return len(queue.jobs)
}

// Close stops further enqueues and wakes blocked consumers.
func (queue *MemoryQueue) Close() {
	queue.closeOnce.Do(func() { close(queue.closed) })
}
