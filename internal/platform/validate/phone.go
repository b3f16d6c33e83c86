// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/nyaruka/phonenumbers"
)

// ErrInvalidPhone is returned for numbers libphonenumber cannot parse or
// does not consider dialable.
var ErrInvalidPhone = errors.New("must be a valid phone number")

// NormalizePhone parses raw in the context of region (ISO 3166 alpha-2) and
// returns it in E.164 form.
func NormalizePhone(raw, region string) (string, error) {
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// Phone is an ozzo rule accepting empty values and valid numbers for region.
func Phone(region string) validation.Rule {
	return validation.By(func(value any) error {
		raw, _ := value.(string)
		if ptr, ok := value.(*string); ok && ptr != nil {
			raw = *ptr
		}
		if raw == "" {
			return nil
		}
		if _, err := NormalizePhone(raw, region); err != nil {
			return ErrInvalidPhone
		}
		return nil
	})
}
