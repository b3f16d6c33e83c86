// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/users/auth"
)

const aliceID = "0190a1b2-0000-7000-8000-000000000001"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeUsers is an in-memory UserRepository. WithinTx restores the previous
// state when fn fails.
type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*auth.User
	created int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*auth.User)}
}

func (users *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	users.mu.Lock()
	defer users.mu.Unlock()
	if user, ok := users.byID[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (users *fakeUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	users.mu.Lock()
	defer users.mu.Unlock()
	for _, user := range users.byID {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (users *fakeUsers) Create(_ context.Context, user *auth.User) error {
	users.mu.Lock()
	defer users.mu.Unlock()
	for _, existing := range users.byID {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("User already exists")
		}
	}
	clone := *user
	users.byID[user.ID] = &clone
	users.created++
	return nil
}

func (users *fakeUsers) SetHasAvatar(_ context.Context, id string, hasAvatar bool) error {
	users.mu.Lock()
	defer users.mu.Unlock()
	user, ok := users.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.HasAvatar = hasAvatar
	return nil
}

func (users *fakeUsers) get(id string) auth.User {
	users.mu.Lock()
	defer users.mu.Unlock()
	return *users.byID[id]
}

func (users *fakeUsers) WithinTx(ctx context.Context, fn func(auth.UserRepository) error) error {
	users.mu.Lock()
	snapshot := make(map[string]*auth.User, len(users.byID))
	for id, user := range users.byID {
		snapshot[id] = user
	}
	users.mu.Unlock()

	if err := fn(users); err != nil {
		users.mu.Lock()
		users.byID = snapshot
		users.mu.Unlock()
		return err
	}
	return nil
}

func (users *fakeUsers) count() int {
	users.mu.Lock()
	defer users.mu.Unlock()
	return len(users.byID)
}

type fixture struct {
	service *auth.Service
	users   *fakeUsers
	tokens  *sec.TokenService
	hasher  *sec.PasswordHasher
	root    string
	queue   *media.MemoryQueue
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

	tokens, err := sec.NewTokenService("test-secret")
	require.NoError(t, err)
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)
	users := newFakeUsers()

	service := auth.NewService(users, tokens, hasher, media.NewPipeline(store, queue, discard),
		auth.Options{TokenTTL: time.Hour, PhoneRegion: "US"}, discard)

	return &fixture{service: service, users: users, tokens: tokens, hasher: hasher, queue: queue}
}

// seed stores an active account with the given password.
func (f *fixture) seed(t *testing.T, username, password string) *auth.User {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	user := &auth.User{
		ID:           aliceID,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: digest,
		IsActive:     true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) avatarExists(userID string) bool {
	_, err := os.Stat(filepath.Join(f.root, "avas", userID+".png"))
	return err == nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, image.NewNRGBA(image.Rect(0, 0, width, height))))
	return buffer.Bytes()
}
