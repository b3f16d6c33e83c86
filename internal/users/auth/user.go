// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements accounts, credential checks and stateless sessions.

# Architecture

A session is a signed token held in the `access_token` cookie; nothing about
it is stored server side. [Service.ResolveIdentity] turns that cookie back
into a [sec.Identity] for the session middleware, and [Service.Login] issues
a fresh one after a successful password check.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/sec"
)

// # Domain Entities

// User is a registered account.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role,omitempty"`
	PhoneNumber  string       `json:"phone_number,omitempty"`
	IsActive     bool         `json:"is_active"`
	HasAvatar    bool         `json:"has_avatar"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// AvatarKey returns the storage key of the avatar, or "" when the user has none.
func (user *User) AvatarKey() string {
	if !user.HasAvatar {
		return ""
	}
	key, err := media.AvatarOf(user.ID).Key()
	if err != nil {
		return ""
	}
	return key
}

// # Canonical Forms

// CanonicalUsername trims and NFKC-normalizes a username so visually equal
// handles map to the same account.
func CanonicalUsername(raw string) string {
	return norm.NFKC.String(strings.TrimSpace(raw))
}

// CanonicalEmail trims and lower-cases an email address.
func CanonicalEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// # Field Identifiers

const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldPhoneNumber     = "phone_number"
	FieldPassword        = "password"
	FieldPasswordConfirm = "password2"
	FieldAvatar          = "avatar"
	FieldNext            = "next"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresAt       = "expires_at"
)

// # Messages

const (
	MsgBadCredentials      = "Incorrect Username or Password"
	MsgUnknownError        = "Unknown Error"
	MsgInvalidRegistration = "Invalid registration request"
	MsgRegistered          = "User successfully created"
	MsgLoggedOut           = "Logout Successful"
)
