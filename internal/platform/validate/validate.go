// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate turns ozzo-validation rule sets into a single
// [apperr.AppError] carrying one [apperr.FieldError] per failing field.
//
// # Architecture
//
// Rules are declared next to the payload in the service layer with
// [validation.Field]; this package only runs them and normalizes the result,
// so handlers never see ozzo types.
package validate

import (
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/taibuivan/chirper/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

	// ErrInvalidForm is returned when a form body cannot be parsed or is too large.
	ErrInvalidForm = apperr.ValidationError("Invalid form payload")

	// usernamePattern allows letters, digits, dot, dash and underscore.
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}._-]+$`)
)

// Username is the shared rule set for account handles.
var Username = []validation.Rule{
	validation.Required,
	validation.Length(3, 32),
	validation.Match(usernamePattern).Error("may contain only letters, digits, '.', '-' and '_'"),
}

// Password is the shared rule set for new passwords. bcrypt ignores input past 72 bytes.
var Password = []validation.Rule{
	validation.Required,
	validation.Length(6, 72),
}

/*
Struct validates structPtr with the given field rules.

Parameters:
  - message: string (top-level message of the resulting error)
  - structPtr: any (pointer to the payload)
  - fields: ...*validation.FieldRules

Returns:
  - error: nil, or an *apperr.AppError with VALIDATION_ERROR and sorted details
*/
func Struct(message string, structPtr any, fields ...*validation.FieldRules) error {
	return FromOzzo(message, validation.ValidateStruct(structPtr, fields...))
}

// FromOzzo converts an ozzo result into an [apperr.AppError]. Internal rule
// failures become INTERNAL_ERROR.
func FromOzzo(message string, err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return apperr.Internal(internal.InternalError())
	}

	var fieldErrors validation.Errors
	if !errors.As(err, &fieldErrors) {
		return apperr.ValidationError(message, apperr.FieldError{Message: err.Error()})
	}

	details := make([]apperr.FieldError, 0, len(fieldErrors))
	for field, fieldErr := range fieldErrors {
		details = append(details, apperr.FieldError{Field: field, Message: fieldErr.Error()})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })

	return apperr.ValidationError(message, details...)
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
