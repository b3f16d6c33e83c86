// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chirper/internal/media"
)

const (
	userID = "0190a1b2-0000-7000-8000-000000000001"
	postID = "0190a1b2-0000-7000-8000-0000000000aa"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, height/2, color.NRGBA{R: 200, A: 255})
	}
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, img))
	return buffer.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buffer bytes.Buffer
	require.NoError(t, jpeg.Encode(&buffer, img, nil))
	return buffer.Bytes()
}

func dimensions(t *testing.T, data []byte) (int, int) {
	t.Helper()
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return config.Width, config.Height
}

// memoryStore is an in-memory media.Store that can be told to fail.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (store *memoryStore) Put(_ context.Context, key string, data []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.puts++
	if store.putErr != nil {
		return store.putErr
	}
	store.objects[key] = append([]byte(nil), data...)
	return nil
}

func (store *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	data, ok := store.objects[key]
	if !ok {
		return nil, media.ErrObjectNotFound
	}
	return data, nil
}

func (store *memoryStore) object(key string) ([]byte, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	data, ok := store.objects[key]
	return data, ok
}

// recordingQueue captures jobs and can be told to fail.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []media.Job
	err  error
}

func (queue *recordingQueue) Enqueue(_ context.Context, job media.Job) error {
	queue.mu.Lock()
	defer queue.mu.Unlock()
	if queue.err != nil {
		return queue.err
	}
	queue.jobs = append(queue.jobs, job)
	return nil
}
