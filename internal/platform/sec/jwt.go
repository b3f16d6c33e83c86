// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. It is injected into the application layer through small
// interfaces declared by the consumers.
//
// # Tokens
//
// Session tokens are HS256 JWTs signed with a single server secret. The
// payload carries the username (sub), the user id (id), the role (role) and
// an absolute expiry (exp). Any other algorithm is rejected on validation.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySecret is returned when a token service is built without a key.
	ErrEmptySecret = errors.New("sec: signing secret is empty")

	// ErrTokenExpired marks a well-formed token whose exp has passed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid marks a token that is malformed, tampered with, signed
	// with another key or algorithm, or missing required claims.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// SessionClaims is the payload embedded inside a session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"id"`
	Role   string `json:"role"`
}

// Identity is the authenticated principal reconstructed from a valid token.
type Identity struct {
	Username  string
	UserID    string
	Role      UserRole
	ExpiresAt time.Time
}

// IsAdmin reports whether the identity carries the admin role.
func (identity *Identity) IsAdmin() bool {
	return identity != nil && identity.Role.AtLeast(RoleAdmin)
}

// TokenService issues and validates HS256 session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// TokenOption customizes a [TokenService].
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for iat/exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(service *TokenService) {
		service.now = now
	}
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	service := &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

/*
IssueToken signs a token for the given principal, valid for ttl from now.

Parameters:
  - username: string (sub claim)
  - userID: string (id claim)
  - role: UserRole (may be empty)
  - ttl: time.Duration

Returns:
  - string: Compact serialized JWT
  - time.Time: Absolute expiry embedded in the token
  - error: Signing failures
*/
func (service *TokenService) IssueToken(username, userID string, role UserRole, ttl time.Duration) (string, time.Time, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Role:   string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec_issue_token_failed: %w", err)
	}

	return signedToken, expiresAt.Truncate(time.Second), nil
}

/*
ValidateToken checks signature, algorithm, expiry and required claims.

Parameters:
  - raw: string

Returns:
  - *Identity: The principal encoded in the token
  - error: [ErrTokenExpired] or [ErrTokenInvalid], wrapping the parser's reason
*/
func (service *TokenService) ValidateToken(raw string) (*Identity, error) {
	claims := &SessionClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return service.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.Subject == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing sub or id claim", ErrTokenInvalid)
	}

	return &Identity{
		Username:  claims.Subject,
		UserID:    claims.UserID,
		Role:      UserRole(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
