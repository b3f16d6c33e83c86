// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command worker consumes deferred image jobs from Redis and shrinks each
// stored image to its bounding box.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis and open the image store.
//  4. Requeue jobs left in flight by a previous worker.
//  5. Consume until SIGINT or SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/config"
	"github.com/taibuivan/chirper/internal/platform/constants"
	redisstore "github.com/taibuivan/chirper/internal/platform/redis"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", constants.AppName), slog.String("component", "worker"))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.QueueBackend != config.QueueRedis {
		log.Error("startup_failure",
			slog.String("context", "queue backend"),
			slog.String("queue_backend", cfg.QueueBackend),
			slog.String("hint", "the memory queue is consumed inside the api process"),
		)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startupCancel()

	// ── 3. Redis & Store ──────────────────────────────────────────────────
	// Each consumer blocks on its own connection.
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.WorkerConcurrency+2, log)
	must(log, err, "connect to redis")
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	store, err := media.OpenStore(startupCtx, cfg)
	must(log, err, "open image store")

	queue := media.NewRedisQueue(rdb, cfg.QueueName, constants.QueueBlockTimeout, log)

	// ── 4. Recovery ───────────────────────────────────────────────────────
	requeued, err := queue.Recover(startupCtx)
	must(log, err, "recover in-flight jobs")
	if requeued > 0 {
		log.Warn("worker_requeued_inflight_jobs", slog.Int("count", requeued))
	}

	// ── 5. Consume ────────────────────────────────────────────────────────
	log.Info("worker_started",
		slog.String("queue", cfg.QueueName),
		slog.Int("concurrency", cfg.WorkerConcurrency),
		slog.String("image_storage", cfg.ImageStorage),
	)

	worker := media.NewWorker(queue, store, log, cfg.WorkerConcurrency, constants.QueueRetryDelay)
	if err := worker.Run(ctx); err != nil {
		log.Error("worker_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("worker_stopped_cleanly")
}

func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
