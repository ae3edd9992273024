package testutil

import (
	"net/http"
	"time"

	"bistro/pkg/requestcontext"
)

// WithIdentity attaches a verified identity for email, as the auth middleware
// would after accepting a credential.
func WithIdentity(req *http.Request, email string) *http.Request {
	now := time.Now()
	ctx := requestcontext.WithIdentity(req.Context(), requestcontext.VerifiedIdentity{
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	return req.WithContext(ctx)
}

// WithRequestMetadata sets the request ID and client metadata normally filled
// in by the shared middleware chain.
func WithRequestMetadata(req *http.Request, requestID, clientIP, userAgent string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	ctx = requestcontext.WithClientMetadata(ctx, clientIP, userAgent)
	return req.WithContext(ctx)
}
