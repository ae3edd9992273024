// Package gate composes the authorization middleware. Every protected route is
// mounted through one of its chains, so authentication always runs first and a
// role or ownership check never sees an unverified caller.
package gate

import (
	"log/slog"
	"net/http"

	"bistro/internal/authz"
	"bistro/pkg/platform/middleware/admin"
	"bistro/pkg/platform/middleware/auth"
	"bistro/pkg/platform/middleware/ownership"
)

type Middleware = func(http.Handler) http.Handler

type Gate struct {
	validator auth.JWTValidator
	resolver  admin.RoleResolver
	observer  authz.Observer
	logger    *slog.Logger
}

func New(validator auth.JWTValidator, resolver admin.RoleResolver, logger *slog.Logger, observers ...authz.Observer) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		validator: validator,
		resolver:  resolver,
		observer:  authz.Observers(observers),
		logger:    logger,
	}
}

// Authenticated requires a valid credential.
func (g *Gate) Authenticated() []Middleware {
	return []Middleware{auth.RequireAuth(g.validator, g.logger, g.observer)}
}

// Admin requires a valid credential whose subject the user store marks admin.
func (g *Gate) Admin() []Middleware {
	return append(g.Authenticated(), admin.RequireAdmin(g.resolver, g.logger, g.observer))
}

// Owner requires a valid credential whose email equals the target exactly.
func (g *Gate) Owner(target ownership.TargetFunc) []Middleware {
	return append(g.Authenticated(), ownership.RequireOwnership(target, g.logger, g.observer))
}
