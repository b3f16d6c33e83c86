// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/users/auth"
)

// registrar is the slice of [auth.Service] the create command needs.
type registrar interface {
	Register(ctx context.Context, input auth.RegisterInput) (*auth.User, error)
}

// passwordPrompt asks for a secret without echoing it.
type passwordPrompt interface {
	Password(label string) (string, error)
}

func newFlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	return flags
}

// runCreate provisions one account. The password is prompted twice and must
// match; the usual registration rules apply to every field.
func runCreate(ctx context.Context, args []string, users registrar, prompt passwordPrompt, out io.Writer) error {
	flags := newFlagSet("create")
	username := flags.String("username", "", "login name")
	email := flags.String("email", "", "contact address")
	role := flags.String("role", "", "moderator or admin; empty for a regular account")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%v\n%w", err, errUsage)
	}
	if strings.TrimSpace(*username) == "" || strings.TrimSpace(*email) == "" {
		return fmt.Errorf("-username and -email are required\n%w", errUsage)
	}

	parsedRole, err := sec.ParseRole(*role)
	if err != nil {
		return err
	}

	password, err := prompt.Password("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	confirm, err := prompt.Password("Password (again): ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	user, err := users.Register(ctx, auth.RegisterInput{
		Username:        *username,
		Email:           *email,
		Password:        password,
		PasswordConfirm: confirm,
		Role:            parsedRole,
	})
	if err != nil {
		return describe(err)
	}

	_, err = fmt.Fprintf(out, "created user %s (%s)\n", user.Username, user.ID)
	return err
}

// describe flattens validation details into one line per field.
func describe(err error) error {
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) || len(appErr.Details) == 0 {
		return err
	}

	lines := make([]string, 0, len(appErr.Details)+1)
	lines = append(lines, appErr.Message)
	for _, detail := range appErr.Details {
		lines = append(lines, fmt.Sprintf("  %s: %s", detail.Field, detail.Message))
	}
	return errors.New(strings.Join(lines, "\n"))
}
