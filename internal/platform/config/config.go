// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, image store) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Backends

const (
	// StorageFS keeps images on the local filesystem under ImageRoot.
	StorageFS = "fs"

	// StorageMinio keeps images in an S3-compatible bucket.
	StorageMinio = "minio"

	// QueueRedis delivers resize jobs through a Redis list to cmd/worker.
	QueueRedis = "redis"

	// QueueMemory delivers resize jobs to a worker embedded in the API process.
	QueueMemory = "memory"
)

// # Configuration Schema

// Config holds all runtime configuration for the Chirper server and worker.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis). Only required by the redis queue backend.
	RedisURL string `env:"REDIS_URL"`

	// Session signing and hashing
	SessionSecret string        `env:"SESSION_SECRET,required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL"      envDefault:"12h"`
	BcryptCost    int           `env:"BCRYPT_COST"    envDefault:"12"`
	CookieSecure  bool          `env:"COOKIE_SECURE"  envDefault:"false"`

	// Image storage
	ImageStorage   string `env:"IMAGE_STORAGE"    envDefault:"fs"`
	ImageRoot      string `env:"IMAGE_ROOT"       envDefault:"./static/images"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// Object Storage (MinIO / S3-compatible)
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"    envDefault:"chirper-images"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"   envDefault:"false"`

	// Deferred image jobs
	QueueBackend      string `env:"QUEUE_BACKEND"      envDefault:"redis"`
	QueueName         string `env:"QUEUE_NAME"         envDefault:"chirper:images"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"2"`

	// Default region used to parse phone numbers without a country prefix
	PhoneRegion string `env:"PHONE_REGION" envDefault:"US"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates
// the cross-field combinations that struct tags cannot express.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks backend selections and their dependent settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.ImageStorage {
	case StorageFS:
		if c.ImageRoot == "" {
			errs = append(errs, errors.New("IMAGE_ROOT is required for fs storage"))
		}
	case StorageMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for minio storage"))
		}
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IMAGE_STORAGE %q", c.ImageStorage))
	}

	switch c.QueueBackend {
	case QueueRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for redis queue"))
		}
	case QueueMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown QUEUE_BACKEND %q", c.QueueBackend))
	}

	// The session cookie carries the bearer credential.
	if c.IsProduction() && !c.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SECURE must be true in production"))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be at least 1"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
