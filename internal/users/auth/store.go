// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for accounts as seen by
// registration and login.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given canonical username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a taken username or email, or persistence failures
	*/
	Create(context context.Context, user *User) error

	// SetHasAvatar updates the avatar flag of account id.
	SetHasAvatar(context context.Context, id string, hasAvatar bool) error

	/*
		WithinTx runs fn with a repository bound to one transaction. The
		transaction commits only if fn returns nil.

		Parameters:
		  - context: context.Context
		  - fn: func(UserRepository) error

		Returns:
		  - error: fn's error or transaction failures
	*/
	WithinTx(context context.Context, fn func(repository UserRepository) error) error
}
