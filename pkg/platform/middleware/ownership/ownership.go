// Package ownership gates per-user resources on the verified caller's email.
package ownership

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bistro/internal/authz"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/platform/middleware/admin"
	"bistro/pkg/platform/middleware/auth"
	"bistro/pkg/requestcontext"
)

// TargetFunc extracts the email that owns the requested resource.
type TargetFunc func(r *http.Request) string

// URLParam reads the target email from a chi route parameter.
func URLParam(name string) TargetFunc {
	return func(r *http.Request) string { return chi.URLParam(r, name) }
}

// Query reads the target email from a query parameter.
func Query(name string) TargetFunc {
	return func(r *http.Request) string { return r.URL.Query().Get(name) }
}

// RequireOwnership admits the request only when the verified email equals the
// target exactly. Admins get no bypass. It must run after auth.RequireAuth.
func RequireOwnership(target TargetFunc, logger *slog.Logger, observer authz.Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			ident, ok := requestcontext.Identity(ctx)
			if !ok {
				logger.ErrorContext(ctx, "ownership gate reached without identity",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, auth.UnauthorizedMessage))
				return
			}

			decision := authz.Ownership(ident.Email, target(r))
			if observer != nil {
				observer.Observe(ctx, decision)
			}
			if !decision.Allowed {
				logger.WarnContext(ctx, "forbidden access",
					"reason", "ownership_mismatch",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, admin.ForbiddenMessage))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
