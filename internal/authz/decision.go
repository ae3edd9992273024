// Package authz holds the authorization policy: the failure taxonomy, the
// decision value produced by every gate check. Package gate composes the HTTP
// middleware in the required order (authenticate, then role or ownership).
//
// RoleNeverFromToken: a credential's claims are never consulted for the caller's
// role. Tokens are not re-signed when a role changes, so the only source of
// truth is the user store, resolved on every admin-gated request. Admin takes
// the resolved role as an argument precisely so no caller can feed it a claim.
package authz

import (
	"context"

	"bistro/pkg/domain"
)

// Check names the gate that produced a decision.
type Check string

const (
	CheckAuthenticated Check = "authenticated"
	CheckAdmin         Check = "admin"
	CheckOwnership     Check = "ownership"
)

// Decision is the transient outcome of one gate check. Reason is nil when
// Allowed is true, and one of the taxonomy errors (possibly wrapping a cause)
// otherwise.
type Decision struct {
	Check   Check
	Allowed bool
	Reason  error
	Email   string
	Target  string
}

// Unauthenticated reports whether the decision maps to a 401.
func (d Decision) Unauthenticated() bool {
	return !d.Allowed && IsUnauthenticated(d.Reason)
}

// Forbidden reports whether the decision maps to a 403.
func (d Decision) Forbidden() bool {
	return !d.Allowed && IsForbidden(d.Reason)
}

// Outcome is a stable label for metrics and logs.
func (d Decision) Outcome() string {
	switch {
	case d.Allowed:
		return "allowed"
	case d.Unauthenticated():
		return "unauthenticated"
	case d.Forbidden():
		return "forbidden"
	default:
		return "error"
	}
}

// Authenticated records the outcome of credential verification.
func Authenticated(email string, err error) Decision {
	if err != nil {
		return Decision{Check: CheckAuthenticated, Reason: err}
	}
	return Decision{Check: CheckAuthenticated, Allowed: true, Email: email}
}

// Admin allows iff the role resolved from the store is admin.
func Admin(email string, resolved domain.Role) Decision {
	if resolved.IsAdmin() {
		return Decision{Check: CheckAdmin, Allowed: true, Email: email}
	}
	return Decision{Check: CheckAdmin, Reason: ErrInsufficientRole, Email: email}
}

// Ownership allows iff the verified email equals target exactly. There is no
// normalisation and no admin bypass.
func Ownership(email, target string) Decision {
	if email != "" && email == target {
		return Decision{Check: CheckOwnership, Allowed: true, Email: email, Target: target}
	}
	return Decision{Check: CheckOwnership, Reason: ErrOwnershipMismatch, Email: email, Target: target}
}

// Observer receives every decision a gate makes. Implementations must not block.
type Observer interface {
	Observe(ctx context.Context, d Decision)
}

// Observers fans a decision out to several observers.
type Observers []Observer

func (o Observers) Observe(ctx context.Context, d Decision) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ctx, d)
		}
	}
}
