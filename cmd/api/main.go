// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Chirper HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when the redis queue backend is selected.
//  5. Run database migrations (idempotent).
//  6. Open the image store and job queue; start the embedded worker for the
//     memory queue.
//  7. Wire services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/chirper/internal/api"
	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/config"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/middleware"
	"github.com/taibuivan/chirper/internal/platform/migration"
	pgstore "github.com/taibuivan/chirper/internal/platform/postgres"
	redisstore "github.com/taibuivan/chirper/internal/platform/redis"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/platform/view"
	"github.com/taibuivan/chirper/internal/posts"
	"github.com/taibuivan/chirper/internal/users/account"
	"github.com/taibuivan/chirper/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("image_storage", cfg.ImageStorage),
		slog.String("queue_backend", cfg.QueueBackend),
	)

	// Root context lives until shutdown; startup gets its own deadline.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.QueueBackend == config.QueueRedis {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, 10, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Images ─────────────────────────────────────────────────────────
	store, err := media.OpenStore(startupCtx, cfg)
	must(log, err, "open image store")

	var queueClient goredis.UniversalClient
	if rdb != nil {
		queueClient = rdb
	}
	queue, err := media.OpenQueue(cfg, queueClient, log)
	must(log, err, "open job queue")

	workerDone := make(chan error, 1)
	if memoryQueue, ok := queue.(*media.MemoryQueue); ok {
		worker := media.NewWorker(memoryQueue, store, log, cfg.WorkerConcurrency, constants.QueueRetryDelay)
		go func() { workerDone <- worker.Run(rootCtx) }()
		log.Info("embedded_worker_started", slog.Int("concurrency", cfg.WorkerConcurrency))
	} else {
		close(workerDone)
	}

	pipeline := media.NewPipeline(store, queue, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecret)
	must(log, err, "initialize token service")
	hasher := sec.NewPasswordHasher(cfg.BcryptCost)

	renderer := view.NewRenderer(cfg.Debug)
	cookie := middleware.NewSessionCookie(cfg.CookieSecure)

	authService := auth.NewService(auth.NewUserRepository(pool), tokens, hasher, pipeline,
		auth.Options{TokenTTL: cfg.TokenTTL, PhoneRegion: cfg.PhoneRegion}, log)
	accountService := account.NewService(account.NewAccountRepository(pool), hasher, pipeline, cfg.PhoneRegion, log)
	postService := posts.NewService(posts.NewPostgresRepository(pool), pipeline, log)

	checks := []api.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}}
	if rdb != nil {
		checks = append(checks, api.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		})
	}
	liveness, readiness := api.NewHealthHandlers(log, checks...)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Sessions:  authService,
		Cookie:    cookie,
		Auth:      auth.NewHandler(authService, renderer, cookie, cfg.MaxUploadBytes),
		Account:   account.NewHandler(accountService, renderer, cfg.MaxUploadBytes),
		Posts:     posts.NewHandler(postService, renderer, cfg.MaxUploadBytes),
		Images:    media.NewHandler(store),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	shutdownErr := server.Shutdown(shutdownTimeout)

	// Stop the embedded worker after the last request that could enqueue.
	rootCancel()
	if err := <-workerDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Error("embedded_worker_failed", slog.Any("error", err))
	}

	if shutdownErr != nil {
		log.Error("shutdown_failed", slog.Any("error", shutdownErr))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
