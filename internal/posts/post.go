// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package posts implements short text posts with an optional image attachment.

Attachments go through the deferred image pipeline the same way avatars do:
the request stores a PNG and the worker shrinks it to fit 800x800 later.
*/
package posts

import (
	"time"

	"github.com/taibuivan/chirper/internal/media"
)

// # Domain Entities

// Post is a single message on the timeline.
type Post struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	OwnerUsername string    `json:"owner_username"`
	Body          string    `json:"body"`
	HasImage      bool      `json:"has_image"`
	ImageKey      string    `json:"image_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// withImageKey fills ImageKey from HasImage.
func (post *Post) withImageKey() *Post {
	post.ImageKey = ""
	if post.HasImage {
		if key, err := media.AttachmentOf(post.ID).Key(); err == nil {
			post.ImageKey = key
		}
	}
	return post
}

// MaxBodyLength is counted in runes.
const MaxBodyLength = 280

// # Field Identifiers

const (
	FieldBody   = "body"
	FieldFile   = "file"
	FieldPostID = "id"
)
