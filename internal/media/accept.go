// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/chirper/internal/platform/apperr"
)

// Prepared is an upload that decoded successfully and was re-encoded as PNG.
type Prepared struct {
	png          []byte
	Width        int
	Height       int
	DeclaredName string
}

// Stored describes an image written by [Pipeline.Store].
type Stored struct {
	Key    string
	Width  int
	Height int

	// Queued is false when the resize job could not be enqueued; the
	// image is then kept at its uploaded size.
	Queued bool
}

// Pipeline accepts uploads on the request path.
type Pipeline struct {
	store  Store
	queue  Enqueuer
	logger *slog.Logger
	now    func() time.Time
}

// NewPipeline wires an image store and a job producer.
func NewPipeline(store Store, queue Enqueuer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

/*
Prepare decodes data and re-encodes it as PNG without touching storage.

Parameters:
  - data: []byte (raw upload)
  - declaredName: string (client filename, informational only)

Returns:
  - *Prepared: PNG ready to store
  - error: apperr.InvalidImage when data is not a decodable image
*/
func (pipeline *Pipeline) Prepare(data []byte, declaredName string) (*Prepared, error) {
	img, err := decode(data)
	if err != nil {
		return nil, apperr.InvalidImage(err)
	}

	encoded, err := encodePNG(img)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	bounds := img.Bounds()
	return &Prepared{
		png:          encoded,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		DeclaredName: declaredName,
	}, nil
}

/*
Store writes a prepared image for target and enqueues its resize job.

Parameters:
  - ctx: context.Context
  - prepared: *Prepared
  - target: Target

Returns:
  - *Stored: Where the image went and whether the job was queued
  - error: apperr.StorageError when the write fails
*/
func (pipeline *Pipeline) Store(ctx context.Context, prepared *Prepared, target Target) (*Stored, error) {
	key, err := target.Key()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := pipeline.store.Put(ctx, key, prepared.png); err != nil {
		return nil, apperr.StorageError(err)
	}

	stored := &Stored{Key: key, Width: prepared.Width, Height: prepared.Height}

	job := JobFor(target, pipeline.now().UTC())
	if err := pipeline.queue.Enqueue(ctx, job); err != nil {
		pipeline.logger.WarnContext(ctx, "media_enqueue_failed",
			slog.String("key", key),
			slog.String("category", string(target.Category)),
			slog.Any("error", err),
		)
		return stored, nil
	}

	stored.Queued = true
	pipeline.logger.DebugContext(ctx, "media_image_accepted",
		slog.String("key", key),
		slog.String("declared_name", prepared.DeclaredName),
		slog.Int("width", prepared.Width),
		slog.Int("height", prepared.Height),
	)
	return stored, nil
}

// Accept is [Pipeline.Prepare] followed by [Pipeline.Store].
func (pipeline *Pipeline) Accept(ctx context.Context, data []byte, declaredName string, target Target) (*Stored, error) {
	prepared, err := pipeline.Prepare(data, declaredName)
	if err != nil {
		return nil, err
	}
	return pipeline.Store(ctx, prepared, target)
}
