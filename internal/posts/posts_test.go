// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/posts"
)

const (
	aliceID = "0190a1b2-0000-7000-8000-000000000001"
	bobID   = "0190a1b2-0000-7000-8000-000000000002"
)

var (
	alice = &sec.Identity{Username: "alice", UserID: aliceID}
	bob   = &sec.Identity{Username: "bob", UserID: bobID}
	admin = &sec.Identity{Username: "root", UserID: "0190a1b2-0000-7000-8000-000000000003", Role: sec.RoleAdmin}
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakePosts is an in-memory PostRepository with rollback on failed transactions.
type fakePosts struct {
	mu   sync.Mutex
	byID map[string]posts.Post
}

func (repository *fakePosts) Create(_ context.Context, post *posts.Post) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.byID[post.ID] = *post
	return nil
}

func (repository *fakePosts) FindByID(_ context.Context, id string) (*posts.Post, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	post, ok := repository.byID[id]
	if !ok {
		return nil, apperr.NotFound("Post")
	}
	return &post, nil
}

func (repository *fakePosts) List(_ context.Context, limit, offset int) ([]*posts.Post, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	list := make([]*posts.Post, 0, len(repository.byID))
	for _, post := range repository.byID {
		clone := post
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	total := len(list)
	list = list[min(offset, total):]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, total, nil
}

func (repository *fakePosts) SetHasImage(_ context.Context, id string, hasImage bool) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	post, ok := repository.byID[id]
	if !ok {
		return apperr.NotFound("Post")
	}
	post.HasImage = hasImage
	repository.byID[id] = post
	return nil
}

func (repository *fakePosts) WithinTx(ctx context.Context, fn func(posts.PostRepository) error) error {
	repository.mu.Lock()
	snapshot := make(map[string]posts.Post, len(repository.byID))
	for id, post := range repository.byID {
		snapshot[id] = post
	}
	repository.mu.Unlock()

	if err := fn(repository); err != nil {
		repository.mu.Lock()
		repository.byID = snapshot
		repository.mu.Unlock()
		return err
	}
	return nil
}

func (repository *fakePosts) count() int {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	return len(repository.byID)
}

type fixture struct {
	service *posts.Service
	posts   *fakePosts
	queue   *media.MemoryQueue
	root    string
}

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error { return os.ErrPermission }
func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, media.ErrObjectNotFound
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	store, err := media.NewFileStore(root)
	require.NoError(t, err)

	f := newFixtureWithStore(t, store)
	f.root = root
	return f
}

func newFixtureWithStore(t *testing.T, store media.Store) *fixture {
	t.Helper()
	queue := media.NewMemoryQueue(8)

	repository := &fakePosts{byID: make(map[string]posts.Post)}
	service := posts.NewService(repository, media.NewPipeline(store, queue, discard), discard)
	return &fixture{service: service, posts: repository, queue: queue}
}

func (f *fixture) stored(postID string) posts.Post {
	f.posts.mu.Lock()
	defer f.posts.mu.Unlock()
	return f.posts.byID[postID]
}

func (f *fixture) attachmentExists(postID string) bool {
	_, err := os.Stat(filepath.Join(f.root, "tweets", postID+".png"))
	return err == nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, image.NewNRGBA(image.Rect(0, 0, width, height))))
	return buffer.Bytes()
}
