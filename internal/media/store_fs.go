// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps images on the local filesystem under a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates root if needed and returns a store rooted there.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media_file_store_init_failed: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (store *FileStore) path(key string) (string, error) {
	local := filepath.FromSlash(key)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("media: key %q escapes the store root", key)
	}
	return filepath.Join(store.root, local), nil
}

// Put writes to a temporary sibling file and renames it over the target.
func (store *FileStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := store.path(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("media_file_store_mkdir_failed: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("media_file_store_create_failed: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("media_file_store_write_failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("media_file_store_close_failed: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("media_file_store_chmod_failed: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("media_file_store_rename_failed: %w", err)
	}
	return nil
}

// Get reads the file stored under key.
func (store *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := store.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("media_file_store_read_failed: %w", err)
	}
	return data, nil
}
