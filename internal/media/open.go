// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/chirper/internal/platform/config"
	"github.com/taibuivan/chirper/internal/platform/constants"
)

// memoryQueueCapacity bounds jobs waiting for the embedded worker.
const memoryQueueCapacity = 1024

// OpenStore builds the image store selected by IMAGE_STORAGE.
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ImageStorage {
	case config.StorageFS:
		return NewFileStore(cfg.ImageRoot)
	case config.StorageMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("media: unknown image storage %q", cfg.ImageStorage)
	}
}

// OpenQueue builds the job queue selected by QUEUE_BACKEND. client may be nil
// for the memory backend.
func OpenQueue(cfg *config.Config, client redis.UniversalClient, logger *slog.Logger) (Queue, error) {
	switch cfg.QueueBackend {
	case config.QueueMemory:
		return NewMemoryQueue(memoryQueueCapacity), nil
	case config.QueueRedis:
		if client == nil {
			return nil, fmt.Errorf("media: redis queue needs a redis client")
		}
		return NewRedisQueue(client, cfg.QueueName, constants.QueueBlockTimeout, logger), nil
	default:
		return nil, fmt.Errorf("media: unknown queue backend %q", cfg.QueueBackend)
	}
}
