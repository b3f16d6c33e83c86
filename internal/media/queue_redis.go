// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a reliable list queue: jobs are LPUSHed onto "<name>", moved
// atomically to "<name>:processing" when taken, and removed from there on Ack.
// Entries left in the processing list by a crashed worker are pushed back by
// [RedisQueue.Recover].
type RedisQueue struct {
	client       redis.UniversalClient
	pending      string
	processing   string
	blockTimeout time.Duration
	logger       *slog.Logger
}

// NewRedisQueue returns a queue stored under the given list name.
func NewRedisQueue(client redis.UniversalClient, name string, blockTimeout time.Duration, logger *slog.Logger) *RedisQueue {
	return &RedisQueue{
		client:       client,
		pending:      name,
		processing:   name + ":processing",
		blockTimeout: blockTimeout,
		logger:       logger,
	}
}

// Enqueue serializes job and pushes it onto the pending list.
func (queue *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("media_queue_marshal_failed: %w", err)
	}
	if err := queue.client.LPush(ctx, queue.pending, payload).Err(); err != nil {
		return fmt.Errorf("media_queue_push_failed: %w", err)
	}
	return nil
}

// Dequeue blocks on BLMOVE until a job arrives or ctx is done.
// Malformed payloads are dropped from the processing list and logged.
func (queue *RedisQueue) Dequeue(ctx context.Context) (*Delivery, error) {
	for {
		raw, err := queue.client.BLMove(ctx, queue.pending, queue.processing, "RIGHT", "LEFT", queue.blockTimeout).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("media_queue_move_failed: %w", err)
		}

		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			queue.logger.WarnContext(ctx, "media_queue_payload_dropped",
				slog.String("payload", raw),
				slog.Any("error", err),
			)
			_ = queue.remove(ctx, raw)
			continue
		}

		return &Delivery{
			Job: job,
			ack: func(ctx context.Context) error { return queue.remove(ctx, raw) },
		}, nil
	}
}

func (queue *RedisQueue) remove(ctx context.Context, raw string) error {
	if err := queue.client.LRem(ctx, queue.processing, 1, raw).Err(); err != nil {
		return fmt.Errorf("media_queue_ack_failed: %w", err)
	}
	return nil
}

// Recover moves every entry of the processing list back to the pending list.
// Call it once at worker start, before any consumer runs.
func (queue *RedisQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := queue.client.LMove(ctx, queue.processing, queue.pending, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("media_queue_recover_failed: %w", err)
		}
		moved++
	}
}
