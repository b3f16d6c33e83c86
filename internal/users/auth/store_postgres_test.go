// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/users/auth"
)

var userColumns = []string{
	"id", "username", "email", "first_name", "last_name", "password_hash",
	"role", "phone_number", "is_active", "has_avatar", "created_at", "updated_at",
}

func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, *auth.PostgresUserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, auth.NewUserRepository(mock)
}

func TestPostgresUserRepository_FindByUsername(t *testing.T) {
	mock, repository := newMockRepository(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(
			aliceID, "alice", "alice@example.com", "Alice", "Liddell", "hash",
			"admin", "+14155550100", true, true, created, created,
		))

	user, err := repository.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, aliceID, user.ID)
	assert.Equal(t, sec.RoleAdmin, user.Role)
	assert.Equal(t, "+14155550100", user.PhoneNumber)
	assert.True(t, user.HasAvatar)
	assert.Equal(t, "avas/"+aliceID+".png", user.AvatarKey())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByID_NotFound(t *testing.T) {
	mock, repository := newMockRepository(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(aliceID).
		WillReturnRows(pgxmock.NewRows(userColumns))

	user, err := repository.FindByID(context.Background(), aliceID)
	assert.Nil(t, user)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestPostgresUserRepository_Create checks that empty optional columns are
sent for NULLIF and that a unique violation surfaces as a conflict.
*/
func TestPostgresUserRepository_Create(t *testing.T) {
	mock, repository := newMockRepository(t)

	user := &auth.User{
		ID:           aliceID,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(aliceID, "alice", "alice@example.com", "", "", "hash",
			"", "", true, false, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repository.Create(context.Background(), user))
	assert.False(t, user.CreatedAt.IsZero())

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})

	err := repository.Create(context.Background(), &auth.User{ID: aliceID, Username: "alice"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_SetHasAvatar(t *testing.T) {
	mock, repository := newMockRepository(t)

	mock.ExpectExec(`UPDATE users SET has_avatar = \$2, updated_at = now\(\) WHERE id = \$1`).
		WithArgs(aliceID, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET has_avatar`).
		WithArgs(aliceID, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repository.SetHasAvatar(context.Background(), aliceID, false))
	err := repository.SetHasAvatar(context.Background(), aliceID, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
