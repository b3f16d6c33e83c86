// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/database/schema"
	"github.com/taibuivan/chirper/internal/platform/dberr"
	"github.com/taibuivan/chirper/internal/platform/postgres"
	"github.com/taibuivan/chirper/internal/users/auth"
)

// PostgresAccountRepository implements [AccountRepository] over any [postgres.DB].
type PostgresAccountRepository struct {
	db postgres.DB
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(db postgres.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// FindByID retrieves an account by its ID.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, auth.UserColumns, schema.Users.Table, schema.Users.ID)

	user, err := auth.ScanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
UpdateProfile writes every mutable column of user in one statement.

Parameters:
  - context: context.Context
  - user: *User (already carrying the new values)

Returns:
  - error: apperr.Conflict on a taken email, apperr.NotFound if the row is gone
*/
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, user *User) error {
	const query = `
		UPDATE users
		SET email = $2,
		    first_name = $3,
		    last_name = $4,
		    phone_number = NULLIF($5, ''),
		    password_hash = $6,
		    has_avatar = $7,
		    updated_at = now()
		WHERE id = $1`

	tag, err := repository.db.Exec(context, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.PasswordHash,
		user.HasAvatar,
	)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// UpdatePassword replaces the password hash of account id.
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, passwordHash)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// UpdatePhone replaces the phone number of account id.
func (repository *PostgresAccountRepository) UpdatePhone(context context.Context, id, phone string) error {
	const query = `UPDATE users SET phone_number = NULLIF($2, ''), updated_at = now() WHERE id = $1`

	tag, err := repository.db.Exec(context, query, id, phone)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// WithinTx runs fn against a repository bound to a single transaction.
func (repository *PostgresAccountRepository) WithinTx(context context.Context, fn func(AccountRepository) error) error {
	return postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		return fn(&PostgresAccountRepository{db: tx})
	})
}
