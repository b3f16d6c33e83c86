// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/chirper/internal/platform/sec"
)

/*
TestPasswordHasher covers the hash/verify round trip and salting.
*/
func TestPasswordHasher(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	second, err := hasher.Hash("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "digests must be salted")

	ok, err := hasher.Verify("hunter22", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("hunter23", first)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)

	ok, err := hasher.Verify("whatever", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	hasher := sec.NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("")
	require.NoError(t, err)

	ok, err := hasher.Verify("", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	hasher := sec.NewPasswordHasher(99)

	digest, err := hasher.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func newTokens(t *testing.T, secret string, now func() time.Time) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(secret, sec.WithClock(now))
	require.NoError(t, err)
	return service
}

/*
TestTokenService_RoundTrip verifies that a token validates to the same principal
until its TTL elapses and not after.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := issuedAt
	service := newTokens(t, "secret", func() time.Time { return clock })

	token, expiresAt, err := service.IssueToken("alice", "0190a1b2-0000-7000-8000-000000000001", sec.RoleAdmin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), expiresAt)

	clock = issuedAt.Add(30 * time.Minute)
	identity, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "0190a1b2-0000-7000-8000-000000000001", identity.UserID)
	assert.Equal(t, sec.RoleAdmin, identity.Role)
	assert.True(t, identity.IsAdmin())

	clock = issuedAt.Add(2 * time.Hour)
	identity, err = service.ValidateToken(token)
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

func TestTokenService_EmptyRole(t *testing.T) {
	service := newTokens(t, "secret", time.Now)

	token, _, err := service.IssueToken("bob", "id-1", sec.RoleNone, time.Hour)
	require.NoError(t, err)

	identity, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleNone, identity.Role)
	assert.False(t, identity.IsAdmin())
}

func TestTokenService_Rejects(t *testing.T) {
	service := newTokens(t, "secret", time.Now)
	other := newTokens(t, "another-secret", time.Now)

	valid, _, err := service.IssueToken("alice", "id-1", sec.RoleNone, time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.IssueToken("alice", "id-1", sec.RoleNone, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tamperedPayload, _, err := service.IssueToken("mallory", "id-2", sec.RoleAdmin, time.Hour)
	require.NoError(t, err)
	tampered := parts[0] + "." + strings.Split(tamperedPayload, ".")[1] + "." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice", "id": "id-1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "alice", "id": "id-1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice", "id": "id-1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"other key", foreign},
		{"tampered payload", tampered},
		{"alg none", noneToken},
		{"other hmac alg", hs512},
		{"missing exp", noExpiry},
		{"missing id", noID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := service.ValidateToken(tt.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, sec.ErrTokenInvalid)
		})
	}
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("")
	assert.ErrorIs(t, err, sec.ErrEmptySecret)
}

func TestParseRole(t *testing.T) {
	role, err := sec.ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, role)

	role, err = sec.ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleNone, role)

	_, err = sec.ParseRole("root")
	assert.Error(t, err)

	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleModerator))
	assert.False(t, sec.RoleNone.AtLeast(sec.RoleModerator))
}
