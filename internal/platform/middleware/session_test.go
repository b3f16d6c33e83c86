// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/chirper/internal/platform/ctxutil"
	"github.com/taibuivan/chirper/internal/platform/middleware"
	"github.com/taibuivan/chirper/internal/platform/sec"
)

type stubResolver map[string]*sec.Identity

func (resolver stubResolver) ResolveIdentity(_ context.Context, raw string) *sec.Identity {
	return resolver[raw]
}

var alice = &sec.Identity{Username: "alice", UserID: "user-1"}

func whoAmI(seen **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*seen = ctxutil.GetIdentity(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func findCookie(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

/*
TestSession_Soft checks the soft resolver for valid, invalid and missing tokens.
*/
func TestSession_Soft(t *testing.T) {
	cookie := middleware.NewSessionCookie(false)
	resolver := stubResolver{"good": alice}

	tests := []struct {
		name         string
		cookieValue  string
		bearer       string
		wantIdentity *sec.Identity
		wantCleared  bool
	}{
		{"no token", "", "", nil, false},
		{"valid cookie", "good", "", alice, false},
		{"invalid cookie is cleared", "forged", "", nil, true},
		{"valid bearer", "", "good", alice, false},
		{"invalid bearer leaves cookies alone", "", "forged", nil, false},
		{"invalid cookie falls back to bearer", "forged", "good", alice, true},
		{"valid cookie wins over bearer", "good", "forged", alice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Identity
			handler := middleware.Session(resolver, cookie)(whoAmI(&seen))

			request := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if tt.cookieValue != "" {
				request.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookieValue})
			}
			if tt.bearer != "" {
				request.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code, "soft resolver never rejects")
			assert.Equal(t, tt.wantIdentity, seen)

			cleared := findCookie(recorder, "access_token")
			if tt.wantCleared {
				require.NotNil(t, cleared)
				assert.Empty(t, cleared.Value)
				assert.Less(t, cleared.MaxAge, 0)
			} else {
				assert.Nil(t, cleared)
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	var seen *sec.Identity
	chain := middleware.Session(stubResolver{"good": alice}, middleware.NewSessionCookie(false))(
		middleware.RequireSession(whoAmI(&seen)),
	)

	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "UNAUTHORIZED")

	request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	request.AddCookie(&http.Cookie{Name: "access_token", Value: "good"})
	recorder = httptest.NewRecorder()
	chain.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, alice, seen)
}

func TestRequireSessionOrRedirect(t *testing.T) {
	var seen *sec.Identity
	chain := middleware.Session(stubResolver{}, middleware.NewSessionCookie(false))(
		middleware.RequireSessionOrRedirect("/auth")(whoAmI(&seen)),
	)

	request := httptest.NewRequest(http.MethodGet, "/users/settings", nil)
	request.AddCookie(&http.Cookie{Name: "access_token", Value: "expired"})
	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/auth?next=%2Fusers%2Fsettings", recorder.Header().Get("Location"))
	assert.NotNil(t, findCookie(recorder, "access_token"), "stale cookie is cleared on the redirect")
	assert.Nil(t, seen)
}

func TestSessionCookie_SetAndRead(t *testing.T) {
	cookie := middleware.NewSessionCookie(true)
	expiresAt := time.Now().Add(time.Hour)

	recorder := httptest.NewRecorder()
	cookie.Set(recorder, "token-value", expiresAt)

	set := findCookie(recorder, "access_token")
	require.NotNil(t, set)
	assert.Equal(t, "token-value", set.Value)
	assert.True(t, set.HttpOnly)
	assert.True(t, set.Secure)
	assert.Equal(t, "/", set.Path)
	assert.InDelta(t, 3600, set.MaxAge, 5)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(set)
	assert.Equal(t, "token-value", cookie.Read(request))
}
