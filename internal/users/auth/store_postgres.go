// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/database/schema"
	"github.com/taibuivan/chirper/internal/platform/dberr"
	"github.com/taibuivan/chirper/internal/platform/postgres"
	"github.com/taibuivan/chirper/internal/platform/sec"
)

// UserColumns is the select list [ScanUser] expects, in order.
var UserColumns = fmt.Sprintf(`%s, %s, %s, %s, %s, %s, COALESCE(%s, ''), COALESCE(%s, ''), %s, %s, %s, %s`,
	schema.Users.ID, schema.Users.Username, schema.Users.Email, schema.Users.FirstName,
	schema.Users.LastName, schema.Users.PasswordHash, schema.Users.Role, schema.Users.PhoneNumber,
	schema.Users.IsActive, schema.Users.HasAvatar, schema.Users.CreatedAt, schema.Users.UpdatedAt,
)

// ScanUser hydrates a [User] from a row selected with [UserColumns].
func ScanUser(row pgx.Row) (*User, error) {
	var (
		user User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&role,
		&user.PhoneNumber,
		&user.IsActive,
		&user.HasAvatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = sec.UserRole(role)
	return &user, nil
}

// # User Repository

// PostgresUserRepository implements [UserRepository] over any [postgres.DB],
// so the same code runs on the pool or inside a transaction.
type PostgresUserRepository struct {
	db postgres.DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Create persists a new user record.

Description: Empty role and phone number are stored as NULL. Timestamps are
initialized when the caller left them zero.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on a taken username or email, or database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, username, email, first_name, last_name, password_hash,
			role, phone_number, is_active, has_avatar, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		string(user.Role),
		user.PhoneNumber,
		user.IsActive,
		user.HasAvatar,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err, "User")
}

/*
FindByUsername retrieves a user record by its canonical username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, UserColumns, schema.Users.Table, schema.Users.Username)

	user, err := ScanUser(repository.db.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
FindByID retrieves a user record by its ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, UserColumns, schema.Users.Table, schema.Users.ID)

	user, err := ScanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

// SetHasAvatar updates the avatar flag of account id.
func (repository *PostgresUserRepository) SetHasAvatar(context context.Context, id string, hasAvatar bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
		schema.Users.Table, schema.Users.HasAvatar, schema.Users.UpdatedAt, schema.Users.ID,
	)

	tag, err := repository.db.Exec(context, query, id, hasAvatar)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// WithinTx runs fn against a repository bound to a single transaction.
func (repository *PostgresUserRepository) WithinTx(context context.Context, fn func(UserRepository) error) error {
	return postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		return fn(&PostgresUserRepository{db: tx})
	})
}
