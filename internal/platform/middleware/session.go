// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/chirper/internal/platform/apperr"
	"github.com/taibuivan/chirper/internal/platform/constants"
	"github.com/taibuivan/chirper/internal/platform/ctxutil"
	"github.com/taibuivan/chirper/internal/platform/respond"
	"github.com/taibuivan/chirper/internal/platform/sec"
)

// IdentityResolver turns a raw session token into an identity.
// It returns nil for anything that is not a currently valid token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, raw string) *sec.Identity
}

// # Session Cookie

// SessionCookie reads, writes and clears the HTTP-only session cookie.
type SessionCookie struct {
	Name   string
	Path   string
	Secure bool
}

// NewSessionCookie returns the site-wide `access_token` cookie settings.
func NewSessionCookie(secure bool) SessionCookie {
	return SessionCookie{
		Name:   constants.SessionCookieName,
		Path:   constants.SessionCookiePath,
		Secure: secure,
	}
}

// Set stores token in the cookie until expiresAt.
func (cookie SessionCookie) Set(writer http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     cookie.Name,
		Value:    token,
		Path:     cookie.Path,
		Expires:  expiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear instructs the client to drop the cookie.
func (cookie SessionCookie) Clear(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     cookie.Name,
		Value:    "",
		Path:     cookie.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the raw cookie value, or "" when absent.
func (cookie SessionCookie) Read(request *http.Request) string {
	found, err := request.Cookie(cookie.Name)
	if err != nil {
		return ""
	}
	return found.Value
}

// # Identity Resolution

// Session is the soft resolver: it never rejects a request.
//
// # Flow
//  1. Resolve the session cookie through [IdentityResolver].
//  2. A cookie that fails to resolve is cleared on this response.
//  3. Without a usable cookie, resolve the 'Authorization: Bearer' header instead.
//  4. Store the identity (or nil) in the request context.
func Session(resolver IdentityResolver, cookie SessionCookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			var identity *sec.Identity
			if raw := cookie.Read(request); raw != "" {
				identity = resolver.ResolveIdentity(ctx, raw)
				if identity == nil {
					cookie.Clear(writer)
				}
			}
			if identity == nil {
				if raw := bearerToken(request); raw != "" {
					identity = resolver.ResolveIdentity(ctx, raw)
				}
			}

			if holder, ok := ctx.Value(identityHolderKey{}).(*identityHolder); ok && identity != nil {
				holder.userID = identity.UserID
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithIdentity(ctx, identity)))
		})
	}
}

// RequireSession is the strict resolver for JSON endpoints: anonymous requests get 401.
//
// Must be registered in the router AFTER [Session].
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireSessionOrRedirect is the strict resolver for pages: anonymous
// requests are sent to loginPath with the original location in `next`.
func RequireSessionOrRedirect(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetIdentity(request.Context()) == nil {
				target := loginPath + "?next=" + url.QueryEscape(request.URL.RequestURI())
				http.Redirect(writer, request, target, http.StatusFound)
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

func bearerToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	if len(header) <= len(constants.BearerPrefix) || !strings.EqualFold(header[:len(constants.BearerPrefix)], constants.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(constants.BearerPrefix):])
}
