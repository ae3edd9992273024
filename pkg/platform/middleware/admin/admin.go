package admin

import (
	"context"
	"log/slog"
	"net/http"

	"bistro/internal/authz"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/httputil"
	"bistro/pkg/platform/middleware/auth"
	"bistro/pkg/requestcontext"
)

// ForbiddenMessage is the body message of every 403 the gate produces.
const ForbiddenMessage = "forbidden access"

// RoleResolver resolves the caller's current role from the user store.
type RoleResolver interface {
	ResolveRole(ctx context.Context, email string) (domain.Role, error)
}

// RequireAdmin admits the request only when the user store says the verified
// caller is an admin. It must run after auth.RequireAuth. A store failure is a
// 500, never an allow.
func RequireAdmin(resolver RoleResolver, logger *slog.Logger, observer authz.Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			ident, ok := requestcontext.Identity(ctx)
			if !ok {
				logger.ErrorContext(ctx, "admin gate reached without identity",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, auth.UnauthorizedMessage))
				return
			}

			role, err := resolver.ResolveRole(ctx, ident.Email)
			if err != nil {
				logger.ErrorContext(ctx, "admin gate role lookup failed",
					"error", err,
					"request_id", requestID,
				)
				if observer != nil {
					observer.Observe(ctx, authz.Decision{Check: authz.CheckAdmin, Email: ident.Email, Reason: err})
				}
				httputil.WriteError(w, err)
				return
			}

			decision := authz.Admin(ident.Email, role)
			if observer != nil {
				observer.Observe(ctx, decision)
			}
			if !decision.Allowed {
				logger.WarnContext(ctx, "forbidden access",
					"reason", "insufficient_role",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, ForbiddenMessage))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
