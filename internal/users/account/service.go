// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/taibuivan/chirper/internal/media"
	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/validate"
	"github.com/taibuivan/chirper/internal/users/auth"
	"github.com/taibuivan/chirper/pkg/pointer"
)

// # Service Layer

// Service orchestrates self-service changes to an account.
type Service struct {
	accounts    AccountRepository
	hasher      auth.PasswordHasher
	images      auth.ImageAcceptor
	phoneRegion string
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accounts AccountRepository,
	hasher auth.PasswordHasher,
	images auth.ImageAcceptor,
	phoneRegion string,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:    accounts,
		hasher:      hasher,
		images:      images,
		phoneRegion: phoneRegion,
		logger:      logger,
	}
}

// GetProfile retrieves the full private profile of a user.
func (service *Service) GetProfile(context context.Context, userID string) (*User, error) {
	user, err := service.accounts.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// # Settings Form

// SettingsInput is one submission of the settings form. Nil text fields and
// a nil Avatar mean "leave unchanged".
type SettingsInput struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string

	Avatar     []byte
	AvatarName string

	CurrentPassword string
	NewPassword     string
}

func (input *SettingsInput) validate(region string) error {
	return validate.Struct(MsgInvalidSettings, input,
		validation.Field(&input.Email, validation.NilOrNotEmpty, is.Email, validation.Length(0, 254)),
		validation.Field(&input.FirstName, validation.Length(0, 64)),
		validation.Field(&input.LastName, validation.Length(0, 64)),
		validation.Field(&input.PhoneNumber, validate.Phone(region)),
		validation.Field(&input.NewPassword, validation.Length(6, 72)),
	)
}

// SettingsResult reports the state after [Service.UpdateSettings].
type SettingsResult struct {
	User    *User
	Changed bool
}

/*
UpdateSettings applies a settings form submission.

Description: Only fields that differ from the stored value count as changes.
The avatar is decoded before anything is written, so an invalid file leaves
the account untouched. A password change needs the current password. Column
changes commit first and the avatar is written afterwards. A failed avatar
write restores the previous avatar flag and is returned as a storage error,
while the other changes stay committed.

Parameters:
  - context: context.Context
  - userID: string
  - input: SettingsInput

Returns:
  - *SettingsResult: Updated user and whether anything changed
  - error: Validation (missing current password), apperr.BadCredential
    (wrong current password), apperr.InvalidImage, or storage errors
*/
func (service *Service) UpdateSettings(context context.Context, userID string, input SettingsInput) (*SettingsResult, error) {
	if input.Email != nil {
		input.Email = pointer.To(auth.CanonicalEmail(*input.Email))
	}
	if err := input.validate(service.phoneRegion); err != nil {
		return nil, err
	}

	user, err := service.accounts.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	changed := applyText(&user.Email, input.Email)
	changed = applyText(&user.FirstName, input.FirstName) || changed
	changed = applyText(&user.LastName, input.LastName) || changed

	if input.PhoneNumber != nil {
		phone, err := validate.NormalizePhone(*input.PhoneNumber, service.phoneRegion)
		if err != nil {
			return nil, validate.RequiredError(FieldPhoneNumber, err.Error())
		}
		changed = applyText(&user.PhoneNumber, pointer.To(phone)) || changed
	}

	hadAvatar := user.HasAvatar
	var avatar *media.Prepared
	if input.Avatar != nil {
		avatar, err = service.images.Prepare(input.Avatar, input.AvatarName)
		if err != nil {
			return nil, err
		}
		user.HasAvatar = true
		changed = true
	}

	if input.NewPassword != "" {
		hash, err := service.checkAndHash(user, input.CurrentPassword, input.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		changed = true
	}

	if !changed {
		return &SettingsResult{User: user}, nil
	}

	err = service.accounts.WithinTx(context, func(accounts AccountRepository) error {
		return accounts.UpdateProfile(context, user)
	})
	if err != nil {
		return nil, err
	}

	if avatar != nil {
		if _, err := service.images.Store(context, avatar, media.AvatarOf(user.ID)); err != nil {
			service.restoreAvatarFlag(context, user, hadAvatar)
			return nil, err
		}
	}

	service.logger.InfoContext(context, "account_settings_updated",
		slog.String("user_id", user.ID),
		slog.Bool("avatar", avatar != nil),
		slog.Bool("password", input.NewPassword != ""),
	)
	return &SettingsResult{User: user, Changed: true}, nil
}

// restoreAvatarFlag puts back the flag a failed avatar write had raised.
// A previous avatar file survives a failed write, so a set flag stays set.
func (service *Service) restoreAvatarFlag(context context.Context, user *User, hadAvatar bool) {
	if hadAvatar {
		return
	}
	user.HasAvatar = false
	if err := service.accounts.UpdateProfile(context, user); err != nil {
		service.logger.ErrorContext(context, "account_avatar_flag_reset_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

// applyText copies a submitted value over current. Absent and blank values keep current.
func applyText(current *string, submitted *string) bool {
	next := pointer.Val(submitted)
	if next == "" || next == *current {
		return false
	}
	*current = next
	return true
}

// checkAndHash verifies current against the stored hash and hashes next.
func (service *Service) checkAndHash(user *User, current, next string) (string, error) {
	if current == "" {
		return "", validate.RequiredError(FieldCurrentPassword, MsgCurrentPasswordRequired)
	}

	ok, err := service.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("account_service_verify_failed: %w", err))
	}
	if !ok {
		return "", apperr.BadCredential(MsgCurrentPasswordWrong)
	}

	hash, err := service.hasher.Hash(next)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}
	return hash, nil
}

// # Password & Phone

// ChangePasswordInput is the body of the password change API.
type ChangePasswordInput struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword verifies the current password and stores a new one.
func (service *Service) ChangePassword(context context.Context, userID string, input ChangePasswordInput) error {
	err := validate.Struct("Invalid password change", &input,
		validation.Field(&input.Password, validation.Required),
		validation.Field(&input.NewPassword, validate.Password...),
	)
	if err != nil {
		return err
	}

	user, err := service.accounts.FindByID(context, userID)
	if err != nil {
		return err
	}

	hash, err := service.checkAndHash(user, input.Password, input.NewPassword)
	if err != nil {
		return err
	}

	if err := service.accounts.UpdatePassword(context, userID, hash); err != nil {
		return fmt.Errorf("account_service_change_password_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_password_changed", slog.String("user_id", userID))
	return nil
}

// UpdatePhone stores raw in E.164 form and returns the stored value.
func (service *Service) UpdatePhone(context context.Context, userID, raw string) (string, error) {
	phone, err := validate.NormalizePhone(raw, service.phoneRegion)
	if err != nil {
		return "", validate.RequiredError(FieldPhoneNumber, err.Error())
	}

	if err := service.accounts.UpdatePhone(context, userID, phone); err != nil {
		return "", fmt.Errorf("account_service_update_phone_failed: %w", err)
	}
	return phone, nil
}
