// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chirper/internal/platform/middleware"
	"github.com/taibuivan/chirper/internal/platform/sec"
	"github.com/taibuivan/chirper/internal/platform/view"
	"github.com/taibuivan/chirper/internal/users/account"
)

type stubResolver map[string]*sec.Identity

func (resolver stubResolver) ResolveIdentity(_ context.Context, raw string) *sec.Identity {
	return resolver[raw]
}

const aliceToken = "alice-token"

func newRouter(f *fixture) http.Handler {
	resolver := stubResolver{aliceToken: {Username: "alice", UserID: aliceID}}

	router := chi.NewRouter()
	router.Use(middleware.Session(resolver, middleware.NewSessionCookie(false)))
	router.Mount("/users", account.NewHandler(f.service, view.NewRenderer(false), 1<<20).Routes())
	return router
}

func authed(request *http.Request) *http.Request {
	request.AddCookie(&http.Cookie{Name: "access_token", Value: aliceToken})
	return request
}

func settingsForm(t *testing.T, fields map[string]string, avatar []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if avatar != nil {
		part, err := writer.CreateFormFile("avatar", "new.png")
		require.NoError(t, err)
		_, err = part.Write(avatar)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/users/settings", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return authed(request)
}

func serve(router http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_Settings_Anonymous(t *testing.T) {
	router := newRouter(newFixture(t))

	recorder := serve(router, httptest.NewRequest(http.MethodGet, "/users/settings", nil))
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.True(t, strings.HasPrefix(recorder.Header().Get("Location"), "/auth?next="))

	recorder = serve(router, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandler_SettingsPage(t *testing.T) {
	recorder := serve(newRouter(newFixture(t)), authed(httptest.NewRequest(http.MethodGet, "/users/settings", nil)))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "alice@example.com")
}

func TestHandler_UpdateSettings_Messages(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		message string
	}{
		{"nothing changed", map[string]string{"first_name": "Alice"}, account.MsgNoChanges},
		{"name changed", map[string]string{"first_name": "Alicia"}, account.MsgUpdated},
		{"missing current password", map[string]string{"new_password": "secret6"}, account.MsgCurrentPasswordRequired},
		{"wrong current password", map[string]string{"current_password": "nope", "new_password": "secret6"}, account.MsgCurrentPasswordWrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(newRouter(newFixture(t)), settingsForm(t, tt.fields, nil))
			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.message)
		})
	}
}

func TestHandler_UpdateSettings_InvalidAvatar(t *testing.T) {
	f := newFixture(t)

	recorder := serve(newRouter(f), settingsForm(t, map[string]string{"last_name": "Changed"}, []byte("not an image")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "File is not a valid image")
	assert.False(t, f.accounts.get(aliceID).HasAvatar)
	assert.Empty(t, f.accounts.get(aliceID).LastName)
	assert.False(t, f.avatarExists(aliceID))
}

func TestHandler_ChangePassword(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	request := authed(httptest.NewRequest(http.MethodPut, "/users/password",
		strings.NewReader(`{"password":"wonderland","new_password":"abc"}`)))
	assert.Equal(t, http.StatusBadRequest, serve(router, request).Code)

	request = authed(httptest.NewRequest(http.MethodPut, "/users/password",
		strings.NewReader(`{"password":"wonderland","new_password":"abcdef"}`)))
	assert.Equal(t, http.StatusNoContent, serve(router, request).Code)
}

func TestHandler_UpdatePhone(t *testing.T) {
	f := newFixture(t)

	recorder := serve(newRouter(f), authed(httptest.NewRequest(http.MethodPut, "/users/phone_number/2015550123", nil)))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "+12015550123")
}
