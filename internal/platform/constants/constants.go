// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Session: cookie naming and login redirect targets.
  - Images: bounding boxes and storage key prefixes.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "chirper"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 20 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Session

const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "access_token"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// LoginPath is where page routes send anonymous visitors.
	LoginPath = "/auth"

	// HomePath is where a successful form login lands.
	HomePath = "/posts"

	// TokenType is reported by the API token endpoint.
	TokenType = "bearer"
)

// # Images

const (
	// AvatarBox is the square an avatar is shrunk to fit.
	AvatarBox = 200

	// AttachmentBox is the square a post attachment is shrunk to fit.
	AttachmentBox = 800

	// AvatarPrefix and AttachmentPrefix are the storage key namespaces per category.
	AvatarPrefix     = "avas"
	AttachmentPrefix = "tweets"

	// QueueBlockTimeout bounds a single blocking dequeue so shutdown is observed.
	QueueBlockTimeout = 5 * time.Second

	// QueueRetryDelay is the pause after a queue transport error.
	QueueRetryDelay = 1 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"
	BearerPrefix        = "Bearer "
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)
