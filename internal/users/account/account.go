// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages the signed-in user's own profile: settings form,
password change and phone number.
*/
package account

import (
	"context"

	"github.com/taibuivan/chirper/internal/users/auth"
)

// User is the account entity owned by the auth package.
type User = auth.User

// # Account Data Access

// AccountRepository defines persistence for self-service profile changes.
type AccountRepository interface {
	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// UpdateProfile writes email, names, phone number, password hash and the avatar flag.
	UpdateProfile(context context.Context, user *User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(context context.Context, id, passwordHash string) error

	// UpdatePhone replaces the stored phone number; "" clears it.
	UpdatePhone(context context.Context, id, phone string) error

	// WithinTx runs fn with a repository bound to one transaction.
	WithinTx(context context.Context, fn func(repository AccountRepository) error) error
}

// # Field Identifiers

const (
	FieldEmail           = "email"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldPhoneNumber     = "phone_number"
	FieldAvatar          = "avatar"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldPassword        = "password"
	FieldPhoneParam      = "phone"
)

// # Messages

const (
	MsgNoChanges               = "No changes were made"
	MsgUpdated                 = "Information updated"
	MsgCurrentPasswordRequired = "You should enter your current password to change it"
	MsgCurrentPasswordWrong    = "Current password is incorrect"
	MsgInvalidSettings         = "Invalid settings"
)
