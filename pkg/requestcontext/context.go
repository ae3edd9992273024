// Package requestcontext carries per-request values from the HTTP middleware
// to handlers and services without either side importing net/http.
//
// Middleware sets the values once per request; the gate is the only writer of
// the verified identity. Readers fall back to a zero value (or time.Now) when
// a value is absent, so services stay callable from workers and tests.
package requestcontext

import (
	"context"
	"time"
)

type (
	identityKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// VerifiedIdentity is what a successful credential verification yields. Only
// Email is trusted for lookups. Attributes are echoed back to handlers and
// play no part in authorization.
type VerifiedIdentity struct {
	Email      string
	Attributes map[string]any
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Identity returns the verified identity; ok is false on unauthenticated
// requests.
func Identity(ctx context.Context) (VerifiedIdentity, bool) {
	ident, ok := ctx.Value(identityKey{}).(VerifiedIdentity)
	return ident, ok
}

// Email returns the verified email, or "" when unauthenticated.
func Email(ctx context.Context) string {
	ident, _ := Identity(ctx)
	return ident.Email
}

func WithIdentity(ctx context.Context, ident VerifiedIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

func UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey{}).(string)
	return ua
}

// WithClientMetadata stores the caller's address and user agent, as resolved
// by the metadata middleware.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now is the time the request was received. Outside a request it is the wall
// clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
