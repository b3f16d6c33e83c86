// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/platform/validate"
	"github.com/taibuivan/chirper/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer signs and validates session tokens. Satisfied by [sec.TokenService].
type TokenIssuer interface {
	IssueToken(username, userID string, role sec.UserRole, ttl time.Duration) (string, time.Time, error)
	ValidateToken(raw string) (*sec.Identity, error)
}

// PasswordHasher hashes and verifies passwords. Satisfied by [sec.PasswordHasher].
type PasswordHasher interface {
	Hash(plainText string) (string, error)
	Verify(plainText, existingHash string) (bool, error)
}

// ImageAcceptor is the upload half of the image pipeline. Satisfied by [media.Pipeline].
type ImageAcceptor interface {
	Prepare(data []byte, declaredName string) (*media.Prepared, error)
	Store(ctx context.Context, prepared *media.Prepared, target media.Target) (*media.Stored, error)
}

// Options are the tunables of [Service].
type Options struct {
	TokenTTL    time.Duration
	PhoneRegion string
}

// Service implements registration, login and session resolution.
type Service struct {
	users   UserRepository
	tokens  TokenIssuer
	hasher  PasswordHasher
	images  ImageAcceptor
	options Options
	logger  *slog.Logger

	// dummyHash is compared against when the username is unknown so the
	// response time does not reveal whether an account exists.
	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	users UserRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	images ImageAcceptor,
	options Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		images:  images,
		options: options,
		logger:  logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	PhoneNumber     string
	Password        string
	PasswordConfirm string

	// Role is only set by operator tooling; web sign-ups are regular accounts.
	Role sec.UserRole

	// Avatar is optional; nil means no file was uploaded.
	Avatar     []byte
	AvatarName string
}

func (input *RegisterInput) validate(region string) error {
	return validate.Struct(MsgInvalidRegistration, input,
		validation.Field(&input.Username, validate.Username...),
		validation.Field(&input.Email, validation.Required, is.Email, validation.Length(0, 254)),
		validation.Field(&input.FirstName, validation.Length(0, 64)),
		validation.Field(&input.LastName, validation.Length(0, 64)),
		validation.Field(&input.PhoneNumber, validate.Phone(region)),
		validation.Field(&input.Password, validate.Password...),
		validation.Field(&input.PasswordConfirm,
			validation.Required,
			validation.In(input.Password).Error("passwords do not match"),
		),
		validation.Field(&input.Role, validation.In(sec.RoleModerator, sec.RoleAdmin)),
	)
}

/*
Register validates, hashes, and persists a brand new user account.

Description: An uploaded avatar is decoded before anything is written, so a
bad file rejects the whole registration. The avatar file is written only once
the account row has committed. If that write fails the account is kept
without an avatar.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, apperr.InvalidImage, apperr.Conflict or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	input.Username = CanonicalUsername(input.Username)
	input.Email = CanonicalEmail(input.Email)

	if err := input.validate(service.options.PhoneRegion); err != nil {
		return nil, err
	}

	phone := ""
	if input.PhoneNumber != "" {
		normalized, err := validate.NormalizePhone(input.PhoneNumber, service.options.PhoneRegion)
		if err != nil {
			return nil, validate.RequiredError(FieldPhoneNumber, err.Error())
		}
		phone = normalized
	}

	var avatar *media.Prepared
	if input.Avatar != nil {
		prepared, err := service.images.Prepare(input.Avatar, input.AvatarName)
		if err != nil {
			return nil, err
		}
		avatar = prepared
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		PhoneNumber:  phone,
		IsActive:     true,
		HasAvatar:    avatar != nil,
	}

	err = service.users.WithinTx(context, func(users UserRepository) error {
		return users.Create(context, user)
	})
	if err != nil {
		return nil, err
	}

	if avatar != nil {
		service.storeAvatar(context, user, avatar)
	}

	service.logger.InfoContext(context, "auth_user_registered",
		slog.String("user_id", user.ID),
		slog.Bool("has_avatar", user.HasAvatar),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// storeAvatar writes a committed account's avatar. On failure the flag is
// cleared again and the account stays usable.
func (service *Service) storeAvatar(context context.Context, user *User, avatar *media.Prepared) {
	_, err := service.images.Store(context, avatar, media.AvatarOf(user.ID))
	if err == nil {
		return
	}

	service.logger.WarnContext(context, "auth_avatar_store_failed",
		slog.String("user_id", user.ID),
		slog.Any("error", err),
	)
	if err := service.users.SetHasAvatar(context, user.ID, false); err != nil {
		service.logger.ErrorContext(context, "auth_avatar_flag_reset_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return
	}
	user.HasAvatar = false
}

// # Login Flow

/*
Authenticate checks a username and password pair.

Parameters:
  - context: context.Context
  - username: string (canonicalized before lookup)
  - password: string

Returns:
  - *User: The matching account
  - error: apperr.NotFound for an unknown user, apperr.BadCredential for a
    wrong password or inactive account, apperr.Internal for a corrupt hash
*/
func (service *Service) Authenticate(context context.Context, username, password string) (*User, error) {
	user, err := service.users.FindByUsername(context, CanonicalUsername(username))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			service.burnCompare(password)
		}
		return nil, err
	}

	ok, err := service.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_verify_failed: %w", err))
	}
	if !ok || !user.IsActive {
		return nil, apperr.BadCredential(MsgBadCredentials)
	}

	return user, nil
}

func (service *Service) burnCompare(password string) {
	service.dummyOnce.Do(func() {
		service.dummyHash, _ = service.hasher.Hash("chirper-dummy-password")
	})
	if service.dummyHash != "" {
		_, _ = service.hasher.Verify(password, service.dummyHash)
	}
}

// Session is a freshly issued access token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Login authenticates and issues a session token for the account.
func (service *Service) Login(context context.Context, username, password string) (*Session, error) {
	user, err := service.Authenticate(context, username, password)
	if err != nil {
		return nil, err
	}

	session, err := service.IssueSession(user)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "auth_user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

// IssueSession signs a token carrying the user's username, ID and role.
func (service *Service) IssueSession(user *User) (*Session, error) {
	token, expiresAt, err := service.tokens.IssueToken(user.Username, user.ID, user.Role, service.options.TokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_issue_token_failed: %w", err))
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// # Session Resolution

/*
ValidateSession validates a raw token.

Returns:
  - *sec.Identity: The principal carried by the token
  - error: apperr.TokenInvalid wrapping sec.ErrTokenExpired or sec.ErrTokenInvalid
*/
func (service *Service) ValidateSession(raw string) (*sec.Identity, error) {
	identity, err := service.tokens.ValidateToken(raw)
	if err != nil {
		return nil, apperr.TokenInvalid(err)
	}
	return identity, nil
}

// ResolveIdentity returns the identity of raw, or nil when the token is
// expired, forged or malformed. Rejections are only logged.
func (service *Service) ResolveIdentity(context context.Context, raw string) *sec.Identity {
	identity, err := service.ValidateSession(raw)
	if err != nil {
		service.logger.DebugContext(context, "auth_token_rejected",
			slog.String("code", apperr.CodeTokenInvalid),
			slog.Any("error", errors.Unwrap(err)),
		)
		return nil
	}
	return identity
}
