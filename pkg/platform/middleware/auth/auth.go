package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bistro/internal/authz"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/requestcontext"
)

// UnauthorizedMessage is the body message of every 401 the gate produces.
const UnauthorizedMessage = "unauthorized access"

// JWTValidator defines the interface for validating bearer credentials.
type JWTValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Email      string
	Attributes map[string]any
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// BearerToken extracts the credential from "Authorization: Bearer <token>".
// A missing header, another scheme, or an empty token is ErrMissingCredential.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", authz.ErrMissingCredential
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", authz.ErrMissingCredential
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", authz.ErrMissingCredential
	}
	return token, nil
}

// RequireAuth verifies the bearer credential and attaches the verified identity
// to the request context. On any failure it answers 401 and the next handler
// never runs; no partial identity is ever attached.
func RequireAuth(validator JWTValidator, logger *slog.Logger, observer authz.Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, err := BearerToken(r)
			if err == nil {
				var claims *JWTClaims
				claims, err = validator.ValidateToken(ctx, token)
				if err == nil {
					decision := authz.Authenticated(claims.Email, nil)
					observe(ctx, observer, decision)

					ctx = requestcontext.WithIdentity(ctx, requestcontext.VerifiedIdentity{
						Email:      claims.Email,
						Attributes: claims.Attributes,
						IssuedAt:   claims.IssuedAt,
						ExpiresAt:  claims.ExpiresAt,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if !authz.IsUnauthenticated(err) {
				err = fmt.Errorf("%w: %w", authz.ErrInvalidCredential, err)
			}
			decision := authz.Authenticated("", err)
			observe(ctx, observer, decision)
			logger.WarnContext(ctx, "unauthorized access",
				"reason", reasonLabel(err),
				"error", err,
				"request_id", requestID,
				"path", r.URL.Path,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, UnauthorizedMessage))
		})
	}
}

func reasonLabel(err error) string {
	if errors.Is(err, authz.ErrMissingCredential) {
		return "missing_credential"
	}
	return "invalid_credential"
}

func observe(ctx context.Context, observer authz.Observer, d authz.Decision) {
	if observer != nil {
		observer.Observe(ctx, d)
	}
}
