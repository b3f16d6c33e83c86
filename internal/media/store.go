// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package media

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned by [Store.Get] for a key that was never written.
var ErrObjectNotFound = errors.New("media: object not found")

// Store persists encoded images by key.
//
// # Contract
//
// Put replaces any previous object under the same key. Readers never observe a
// partially written object.
type Store interface {

	/*
		Put writes data under key.

		Parameters:
		  - ctx: context.Context
		  - key: string (slash separated, e.g. "avas/<id>.png")
		  - data: []byte

		Returns:
		  - error: Write failures
	*/
	Put(ctx context.Context, key string, data []byte) error

	/*
		Get reads the object under key.

		Returns:
		  - []byte: Object content
		  - error: [ErrObjectNotFound] or read failures
	*/
	Get(ctx context.Context, key string) ([]byte, error)
}
