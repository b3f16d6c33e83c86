// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import "context"

// PostRepository defines persistence for posts.
type PostRepository interface {

	/*
		Create inserts a post. OwnerUsername is ignored.

		Returns:
		  - error: apperr.NotFound when the owner does not exist, or database failures
	*/
	Create(context context.Context, post *Post) error

	// FindByID returns one post joined with its owner's username.
	FindByID(context context.Context, id string) (*Post, error)

	/*
		List returns one page of posts, newest first.

		Returns:
		  - []*Post: At most limit posts after skipping offset
		  - int: Total number of posts
	*/
	List(context context.Context, limit, offset int) ([]*Post, int, error)

	// SetHasImage updates has_image on post id.
	SetHasImage(context context.Context, id string, hasImage bool) error

	// WithinTx runs fn with a repository bound to one transaction.
	WithinTx(context context.Context, fn func(repository PostRepository) error) error
}
