// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package media implements the deferred image pipeline.

# Flow

 1. [Pipeline.Prepare] decodes an upload and re-encodes it as PNG. Nothing is
    written when the bytes are not an image.
 2. [Pipeline.Store] writes the PNG under a key derived from the owning id and
    enqueues a [Job]. A failed enqueue is logged; the image stays unresized.
 3. [Worker] consumes jobs and shrinks each stored image in place to fit the
    bounding box of its [Category]. Failures are logged and never re-queued.

Images are never enlarged: a picture already inside its box is left untouched.
*/
package media

import (
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/pkg/uuid"
)

// # Categories

// Category selects the storage namespace and bounding box of an image.
type Category string

const (
	// CategoryAvatar is a user's profile picture, keyed by user id.
	CategoryAvatar Category = "avatar"

	// CategoryAttachment is a post's image, keyed by post id.
	CategoryAttachment Category = "attachment"
)

// ErrUnknownCategory is returned for a category outside the closed set.
var ErrUnknownCategory = errors.New("media: unknown image category")

// Box is the maximum width and height an image may occupy.
type Box struct {
	Width  int
	Height int
}

// BoxFor returns the bounding box of category.
func BoxFor(category Category) (Box, error) {
	switch category {
	case CategoryAvatar:
		return Box{Width: constants.AvatarBox, Height: constants.AvatarBox}, nil
	case CategoryAttachment:
		return Box{Width: constants.AttachmentBox, Height: constants.AttachmentBox}, nil
	default:
		return Box{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

func (category Category) prefix() (string, error) {
	switch category {
	case CategoryAvatar:
		return constants.AvatarPrefix, nil
	case CategoryAttachment:
		return constants.AttachmentPrefix, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

// # Targets

// Target names the entity an image belongs to.
type Target struct {
	Category Category
	OwnerID  string
}

// AvatarOf targets the avatar of userID.
func AvatarOf(userID string) Target {
	return Target{Category: CategoryAvatar, OwnerID: userID}
}

// AttachmentOf targets the attachment of postID.
func AttachmentOf(postID string) Target {
	return Target{Category: CategoryAttachment, OwnerID: postID}
}

// Key returns the storage key, e.g. "avas/<id>.png". The owner id must be a UUID
// so that it can never escape the category namespace.
func (target Target) Key() (string, error) {
	prefix, err := target.Category.prefix()
	if err != nil {
		return "", err
	}
	if !uuid.Valid(target.OwnerID) {
		return "", fmt.Errorf("media: owner id %q is not a uuid", target.OwnerID)
	}
	return path.Join(prefix, target.OwnerID+".png"), nil
}

// MustKey is [Target.Key] for ids that come from the database.
func (target Target) MustKey() string {
	key, err := target.Key()
	if err != nil {
		panic(err)
	}
	return key
}

// # Jobs

// Job is the queue payload asking the worker to shrink one stored image.
// It names the owner, never a path; the worker derives the key itself.
type Job struct {
	Kind       Category  `json:"kind"`
	OwnerID    string    `json:"owner_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// JobFor builds the job for target.
func JobFor(target Target, now time.Time) Job {
	return Job{Kind: target.Category, OwnerID: target.OwnerID, EnqueuedAt: now}
}

// Target is the image the job refers to.
func (job Job) Target() Target {
	return Target{Category: job.Kind, OwnerID: job.OwnerID}
}

// Validate rejects payloads that could not have come from [Pipeline.Store].
func (job Job) Validate() error {
	_, err := job.Target().Key()
	return err
}
