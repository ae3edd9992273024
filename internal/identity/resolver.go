// Package identity resolves the caller's role from the user store. It is the
// only place a role is derived; the credential is never consulted.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"bistro/internal/users/models"
	"bistro/pkg/domain"
	dErrors "bistro/pkg/domain-errors"
	"bistro/pkg/platform/sentinel"
)

var tracer = otel.Tracer("bistro/internal/identity")

// UserLookup is the read the resolver needs from the user store.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// LookupObserver records role lookup latency and failures.
type LookupObserver interface {
	ObserveRoleLookup(start time.Time, err error)
}

type Resolver struct {
	users    UserLookup
	observer LookupObserver
	logger   *slog.Logger
}

type Option func(*Resolver)

func WithObserver(o LookupObserver) Option {
	return func(r *Resolver) { r.observer = o }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func New(users UserLookup, opts ...Option) (*Resolver, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	r := &Resolver{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ResolveRole looks the email up exactly as given. A missing user resolves to
// RoleUser; any other store failure is returned and must not be treated as a
// denial or an allow by the caller.
func (r *Resolver) ResolveRole(ctx context.Context, email string) (domain.Role, error) {
	ctx, span := tracer.Start(ctx, "identity.resolve_role")
	defer span.End()

	start := time.Now()
	user, err := r.users.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		err = nil
	}
	if r.observer != nil {
		r.observer.ObserveRoleLookup(start, err)
	}
	if err != nil {
		span.SetStatus(codes.Error, "role lookup failed")
		span.RecordError(err)
		r.logger.ErrorContext(ctx, "role lookup failed", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve role")
	}

	role := user.ResolvedRole()
	span.SetAttributes(
		attribute.Bool("user.found", user != nil),
		attribute.String("user.role", role.String()),
	)
	return role, nil
}
