// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

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

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/users/account"
)

const aliceID = "0190a1b2-0000-7000-8000-000000000001"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAccounts is an in-memory AccountRepository with rollback on failed transactions.
type fakeAccounts struct {
	mu      sync.Mutex
	byID    map[string]account.User
	updates int
}

func (accounts *fakeAccounts) FindByID(_ context.Context, id string) (*account.User, error) {
	accounts.mu.Lock()
	defer accounts.mu.Unlock()
	user, ok := accounts.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &user, nil
}

func (accounts *fakeAccounts) UpdateProfile(_ context.Context, user *account.User) error {
	accounts.mu.Lock()
	defer accounts.mu.Unlock()
	accounts.byID[user.ID] = *user
	accounts.updates++
	return nil
}

func (accounts *fakeAccounts) UpdatePassword(_ context.Context, id, passwordHash string) error {
	accounts.mu.Lock()
	defer accounts.mu.Unlock()
	user, ok := accounts.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = passwordHash
	accounts.byID[id] = user
	accounts.updates++
	return nil
}

func (accounts *fakeAccounts) UpdatePhone(_ context.Context, id, phone string) error {
	accounts.mu.Lock()
	defer accounts.mu.Unlock()
	user, ok := accounts.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PhoneNumber = phone
	accounts.byID[id] = user
	accounts.updates++
	return nil
}

func (accounts *fakeAccounts) WithinTx(ctx context.Context, fn func(account.AccountRepository) error) error {
	accounts.mu.Lock()
	snapshot := make(map[string]account.User, len(accounts.byID))
	for id, user := range accounts.byID {
		snapshot[id] = user
	}
	accounts.mu.Unlock()

	if err := fn(accounts); err != nil {
		accounts.mu.Lock()
		accounts.byID = snapshot
		accounts.mu.Unlock()
		return err
	}
	return nil
}

func (accounts *fakeAccounts) get(id string) account.User {
	accounts.mu.Lock()
	defer accounts.mu.Unlock()
	return accounts.byID[id]
}

// failingStore rejects every write.
type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error { return os.ErrPermission }
func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, media.ErrObjectNotFound
}

type fixture struct {
	service  *account.Service
	accounts *fakeAccounts
	hasher   *sec.PasswordHasher
	root     string
}

func newFixtureWithStore(t *testing.T, store media.Store) *fixture {
	t.Helper()

	hasher := sec.NewPasswordHasher(bcrypt.MinCost)
	digest, err := hasher.Hash("wonderland")
	require.NoError(t, err)

	accounts := &fakeAccounts{byID: map[string]account.User{
		aliceID: {
			ID:           aliceID,
			Username:     "alice",
			Email:        "alice@example.com",
			FirstName:    "Alice",
			PasswordHash: digest,
			IsActive:     true,
		},
	}}

	pipeline := media.NewPipeline(store, media.NewMemoryQueue(8), discard)
	service := account.NewService(accounts, hasher, pipeline, "US", discard)
	return &fixture{service: service, accounts: accounts, hasher: hasher}
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
