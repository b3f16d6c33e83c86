// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/database/schema"
	"github.com/taibuivan/chirper/internal/platform/dberr"
	"github.com/taibuivan/chirper/internal/platform/postgres"
)

// PostgresRepository implements [PostRepository] over any [postgres.DB].
type PostgresRepository struct {
	db postgres.DB
}

// NewPostgresRepository creates a new PostgreSQL implementation of the PostRepository.
func NewPostgresRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectPosts joins every post with its owner's username.
var selectPosts = fmt.Sprintf(`
	SELECT p.%s, p.%s, u.%s, p.%s, p.%s, p.%s
	FROM %s p
	JOIN %s u ON u.%s = p.%s`,
	schema.Posts.ID, schema.Posts.OwnerID, schema.Users.Username, schema.Posts.Body, schema.Posts.HasImage, schema.Posts.CreatedAt,
	schema.Posts.Table,
	schema.Users.Table, schema.Users.ID, schema.Posts.OwnerID,
)

func scanPost(row pgx.Row) (*Post, error) {
	post := &Post{}
	err := row.Scan(&post.ID, &post.OwnerID, &post.OwnerUsername, &post.Body, &post.HasImage, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	return post.withImageKey(), nil
}

/*
Create inserts a post row.

Parameters:
  - context: context.Context
  - post: *Post (CreatedAt is set when zero)

Returns:
  - error: apperr.NotFound for an unknown owner, apperr.Validation for a body
    the table constraint rejects, or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)`,
		schema.Posts.Table, strings.Join(schema.Posts.Columns(), ", "),
	)

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	_, err := repository.db.Exec(context, query, post.ID, post.OwnerID, post.Body, post.HasImage, post.CreatedAt)
	return dberr.Wrap(err, "Post")
}

// FindByID retrieves one post.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	query := fmt.Sprintf(`%s WHERE p.%s = $1`, selectPosts, schema.Posts.ID)

	post, err := scanPost(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Post")
	}
	return post, nil
}

/*
List retrieves one page of posts, newest first, and the total count.

Description: Ties on created_at are broken by id so pages never overlap.
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Post, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.Posts.Table)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Post")
	}

	query := fmt.Sprintf(`%s ORDER BY p.%s DESC, p.%s DESC LIMIT $1 OFFSET $2`, selectPosts, schema.Posts.CreatedAt, schema.Posts.ID)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Post")
	}
	defer rows.Close()

	posts := make([]*Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Post")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Post")
	}

	return posts, total, nil
}

// SetHasImage updates whether post id carries an attachment.
func (repository *PostgresRepository) SetHasImage(context context.Context, id string, hasImage bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`, schema.Posts.Table, schema.Posts.HasImage, schema.Posts.ID)

	tag, err := repository.db.Exec(context, query, id, hasImage)
	if err != nil {
		return dberr.Wrap(err, "Post")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}
	return nil
}

// WithinTx runs fn against a repository bound to a single transaction.
func (repository *PostgresRepository) WithinTx(context context.Context, fn func(PostRepository) error) error {
	return postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		return fn(&PostgresRepository{db: tx})
	})
}
