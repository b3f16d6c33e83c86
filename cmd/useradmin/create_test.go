// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/users/auth"
)

type recordingRegistrar struct {
	got *auth.RegisterInput
	err error
}

func (registrar *recordingRegistrar) Register(_ context.Context, input auth.RegisterInput) (*auth.User, error) {
	registrar.got = &input
	if registrar.err != nil {
		return nil, registrar.err
	}
	return &auth.User{ID: "0190a1b2-0000-7000-8000-0000000000aa", Username: input.Username, Role: input.Role}, nil
}

type scriptedPrompt []string

func (prompt *scriptedPrompt) Password(string) (string, error) {
	if len(*prompt) == 0 {
		return "", io.EOF
	}
	next := (*prompt)[0]
	*prompt = (*prompt)[1:]
	return next, nil
}

func TestRunCreate(t *testing.T) {
	registrar := &recordingRegistrar{}
	prompt := &scriptedPrompt{"s3cret-pass", "s3cret-pass"}
	var out bytes.Buffer

	err := runCreate(context.Background(),
		[]string{"-username", "root", "-email", "root@example.com", "-role", "admin"},
		registrar, prompt, &out)
	require.NoError(t, err)

	require.NotNil(t, registrar.got)
	assert.Equal(t, "root", registrar.got.Username)
	assert.Equal(t, "root@example.com", registrar.got.Email)
	assert.Equal(t, "s3cret-pass", registrar.got.Password)
	assert.Equal(t, "s3cret-pass", registrar.got.PasswordConfirm)
	assert.Equal(t, sec.RoleAdmin, registrar.got.Role)
	assert.Contains(t, out.String(), "created user root")
}

func TestRunCreate_DefaultRole(t *testing.T) {
	registrar := &recordingRegistrar{}
	prompt := &scriptedPrompt{"pw-pw-pw-pw", "pw-pw-pw-pw"}

	err := runCreate(context.Background(), []string{"-username", "bob", "-email", "bob@example.com"},
		registrar, prompt, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleNone, registrar.got.Role)
}

func TestRunCreate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing email", []string{"-username", "bob"}},
		{"missing username", []string{"-email", "bob@example.com"}},
		{"unknown flag", []string{"-username", "bob", "-email", "bob@example.com", "-admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := &recordingRegistrar{}
			err := runCreate(context.Background(), tt.args, registrar, &scriptedPrompt{}, io.Discard)
			assert.ErrorIs(t, err, errUsage)
			assert.Nil(t, registrar.got)
		})
	}
}

func TestRunCreate_UnknownRole(t *testing.T) {
	registrar := &recordingRegistrar{}
	err := runCreate(context.Background(),
		[]string{"-username", "bob", "-email", "bob@example.com", "-role", "root"},
		registrar, &scriptedPrompt{}, io.Discard)
	assert.Error(t, err)
	assert.Nil(t, registrar.got, "nothing is prompted or created for a bad role")
}

func TestRunCreate_ValidationDetails(t *testing.T) {
	registrar := &recordingRegistrar{err: apperr.ValidationError("Invalid registration",
		apperr.FieldError{Field: "password2", Message: "passwords do not match"},
	)}

	err := runCreate(context.Background(), []string{"-username", "bob", "-email", "bob@example.com"},
		registrar, &scriptedPrompt{"one", "two"}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password2: passwords do not match")
}

func TestRunCreate_PromptFailure(t *testing.T) {
	registrar := &recordingRegistrar{}
	err := runCreate(context.Background(), []string{"-username", "bob", "-email", "bob@example.com"},
		registrar, &scriptedPrompt{"only-once"}, io.Discard)
	assert.ErrorIs(t, err, io.EOF)
	assert.Nil(t, registrar.got)
}

func TestTerminalPrompt(t *testing.T) {
	t.Run("piped stdin reads lines", func(t *testing.T) {
		prompt := &terminalPrompt{lines: bufio.NewReader(strings.NewReader("first\r\nsecond")), out: io.Discard}

		first, err := prompt.Password("Password: ")
		require.NoError(t, err)
		second, err := prompt.Password("Password: ")
		require.NoError(t, err)
		_, err = prompt.Password("Password: ")

		assert.Equal(t, "first", first)
		assert.Equal(t, "second", second)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("terminal does not echo", func(t *testing.T) {
		original := readPassword
		t.Cleanup(func() { readPassword = original })
		readPassword = func(int) ([]byte, error) { return []byte("hidden"), nil }

		var out bytes.Buffer
		prompt := &terminalPrompt{fd: int(os.Stdin.Fd()), terminal: true, out: &out}

		secret, err := prompt.Password("Password: ")
		require.NoError(t, err)
		assert.Equal(t, "hidden", secret)
		assert.Equal(t, "Password: \n", out.String())
	})

	t.Run("terminal error", func(t *testing.T) {
		original := readPassword
		t.Cleanup(func() { readPassword = original })
		readPassword = func(int) ([]byte, error) { return nil, errors.New("no tty") }

		prompt := &terminalPrompt{terminal: true, out: io.Discard}
		_, err := prompt.Password("Password: ")
		assert.EqualError(t, err, "no tty")
	})
}
