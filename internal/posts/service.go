// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/platform/validate"
	"github.com/taibuivan/chirper/pkg/pagination"
	"github.com/taibuivan/chirper/pkg/uuid"
)

// ImageAcceptor is the upload half of the image pipeline. Satisfied by [media.Pipeline].
type ImageAcceptor interface {
	Prepare(data []byte, declaredName string) (*media.Prepared, error)
	Store(ctx context.Context, prepared *media.Prepared, target media.Target) (*media.Stored, error)
}

// Service implements the post use cases.
type Service struct {
	posts  PostRepository
	images ImageAcceptor
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(posts PostRepository, images ImageAcceptor, logger *slog.Logger) *Service {
	return &Service{posts: posts, images: images, logger: logger}
}

// CreateInput is a new post with an optional image.
type CreateInput struct {
	Body      string
	Image     []byte
	ImageName string
}

/*
Create publishes a post for identity.

Description: The image, when present, is decoded first; an invalid file
rejects the post. The image is written once the row has committed; if that
write fails the post is kept as text only.

Parameters:
  - context: context.Context
  - identity: *sec.Identity (author)
  - input: CreateInput

Returns:
  - *Post: The stored post
  - error: Validation, apperr.InvalidImage or storage errors
*/
func (service *Service) Create(context context.Context, identity *sec.Identity, input CreateInput) (*Post, error) {
	input.Body = strings.TrimSpace(input.Body)
	err := validate.Struct("Invalid post", &input,
		validation.Field(&input.Body, validation.Required, validation.RuneLength(1, MaxBodyLength)),
	)
	if err != nil {
		return nil, err
	}

	var image *media.Prepared
	if input.Image != nil {
		if image, err = service.images.Prepare(input.Image, input.ImageName); err != nil {
			return nil, err
		}
	}

	post := &Post{
		ID:            uuid.New(),
		OwnerID:       identity.UserID,
		OwnerUsername: identity.Username,
		Body:          input.Body,
		HasImage:      image != nil,
	}

	err = service.posts.WithinTx(context, func(posts PostRepository) error {
		return posts.Create(context, post)
	})
	if err != nil {
		return nil, err
	}

	if image != nil {
		if err := service.storeAttachment(context, post, image, false); err != nil {
			service.logger.WarnContext(context, "post_attachment_dropped",
				slog.String("post_id", post.ID),
				slog.Any("error", err),
			)
		}
	}

	service.logger.InfoContext(context, "post_created",
		slog.String("post_id", post.ID),
		slog.String("owner_id", post.OwnerID),
		slog.Bool("has_image", post.HasImage),
	)
	return post.withImageKey(), nil
}

/*
AttachImage replaces the attachment of an existing post.

Description: has_image commits before the file is written. A failed write
puts the flag back and returns the storage error.

Parameters:
  - context: context.Context
  - identity: *sec.Identity (must own the post or be an admin)
  - postID: string
  - data: []byte
  - declaredName: string

Returns:
  - *Post: The updated post
  - error: apperr.NotFound, apperr.Forbidden, apperr.InvalidImage or storage errors
*/
func (service *Service) AttachImage(context context.Context, identity *sec.Identity, postID string, data []byte, declaredName string) (*Post, error) {
	if data == nil {
		return nil, validate.RequiredError(FieldFile, "cannot be blank")
	}

	post, err := service.Get(context, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != identity.UserID && !identity.IsAdmin() {
		return nil, apperr.Forbidden("Only the author can attach an image")
	}

	image, err := service.images.Prepare(data, declaredName)
	if err != nil {
		return nil, err
	}

	hadImage := post.HasImage
	err = service.posts.WithinTx(context, func(posts PostRepository) error {
		return posts.SetHasImage(context, post.ID, true)
	})
	if err != nil {
		return nil, err
	}
	post.HasImage = true

	if err := service.storeAttachment(context, post, image, hadImage); err != nil {
		return nil, err
	}
	return post.withImageKey(), nil
}

// storeAttachment writes the image of a committed post. When the write
// fails, has_image is put back to hadImage, since a previous file survives
// a failed write.
func (service *Service) storeAttachment(context context.Context, post *Post, image *media.Prepared, hadImage bool) error {
	_, err := service.images.Store(context, image, media.AttachmentOf(post.ID))
	if err == nil || hadImage {
		return err
	}

	if resetErr := service.posts.SetHasImage(context, post.ID, false); resetErr != nil {
		service.logger.ErrorContext(context, "post_image_flag_reset_failed",
			slog.String("post_id", post.ID),
			slog.Any("error", resetErr),
		)
		return err
	}
	post.HasImage = false
	return err
}

// Get returns one post. A malformed id is reported as not found.
func (service *Service) Get(context context.Context, postID string) (*Post, error) {
	if !uuid.Valid(postID) {
		return nil, apperr.NotFound("Post")
	}
	post, err := service.posts.FindByID(context, postID)
	if err != nil {
		return nil, fmt.Errorf("posts_service_get_failed: %w", err)
	}
	return post, nil
}

// Timeline returns one page of the newest posts and the total count.
func (service *Service) Timeline(context context.Context, params pagination.Params) ([]*Post, int, error) {
	posts, total, err := service.posts.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("posts_service_timeline_failed: %w", err)
	}
	return posts, total, nil
}
