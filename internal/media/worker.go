// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Worker shrinks stored images as their jobs arrive.
type Worker struct {
	queue       Queue
	store       Store
	logger      *slog.Logger
	concurrency int
	retryDelay  time.Duration
}

// NewWorker returns a worker running concurrency consumers.
func NewWorker(queue Queue, store Store, logger *slog.Logger, concurrency int, retryDelay time.Duration) *Worker {
	return &Worker{
		queue:       queue,
		store:       store,
		logger:      logger,
		concurrency: max(concurrency, 1),
		retryDelay:  retryDelay,
	}
}

// Run consumes jobs until ctx is cancelled or the queue is closed.
// Job failures are logged and acknowledged; they never stop the worker.
// A job interrupted by cancellation is left unacknowledged so a reliable
// queue delivers it again.
func (worker *Worker) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < worker.concurrency; i++ {
		consumer := i
		group.Go(func() error {
			return worker.consume(groupCtx, consumer)
		})
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrQueueClosed) {
		return nil
	}
	return err
}

func (worker *Worker) consume(ctx context.Context, consumer int) error {
	logger := worker.logger.With(slog.Int("consumer", consumer))

	for {
		delivery, err := worker.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrQueueClosed) {
				return err
			}
			logger.ErrorContext(ctx, "media_dequeue_failed", slog.Any("error", err))
			select {
			case <-time.After(worker.retryDelay):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := worker.Process(ctx, delivery.Job); err != nil {
			if ctx.Err() != nil {
				logger.WarnContext(ctx, "media_job_interrupted",
					slog.String("owner_id", delivery.Job.OwnerID),
					slog.String("kind", string(delivery.Job.Kind)),
				)
				return ctx.Err()
			}
			logger.ErrorContext(ctx, "media_job_failed",
				slog.String("owner_id", delivery.Job.OwnerID),
				slog.String("kind", string(delivery.Job.Kind)),
				slog.Any("error", err),
			)
		}

		if err := delivery.Ack(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "media_ack_failed", slog.String("owner_id", delivery.Job.OwnerID), slog.Any("error", err))
		}
	}
}

/*
Process shrinks the image of one job in place.

Parameters:
  - ctx: context.Context
  - job: Job

Returns:
  - error: Unknown category, missing file, undecodable content or write failure
*/
func (worker *Worker) Process(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	box, err := BoxFor(job.Kind)
	if err != nil {
		return err
	}

	key := job.Target().MustKey()
	data, err := worker.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("media_worker_read_failed: %w", err)
	}

	resized, changed, err := ShrinkPNG(data, box)
	if err != nil {
		return fmt.Errorf("media_worker_resize_failed: %w", err)
	}
	if !changed {
		worker.logger.DebugContext(ctx, "media_job_noop", slog.String("key", key))
		return nil
	}

	if err := worker.store.Put(ctx, key, resized); err != nil {
		return fmt.Errorf("media_worker_write_failed: %w", err)
	}

	worker.logger.InfoContext(ctx, "media_job_done",
		slog.String("key", key),
		slog.String("kind", string(job.Kind)),
		slog.Duration("queued_for", time.Since(job.EnqueuedAt)),
	)
	return nil
}
