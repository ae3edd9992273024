package authz

import "errors"

// Failure taxonomy of the authentication and authorization layer.
//
// ErrMissingSigningKey is a configuration error: it is returned while wiring the
// service and must abort startup. The remaining errors are per-request and are
// translated into a 401 or 403 response at the gate; handlers never see them.
var (
	ErrMissingSigningKey = errors.New("credential signing key is not configured")

	// 401: the caller must (re-)authenticate.
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")

	// 403: the caller is known but not allowed.
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrOwnershipMismatch = errors.New("ownership mismatch")
)

// IsUnauthenticated reports whether err should be answered with 401.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrInvalidCredential)
}

// IsForbidden reports whether err should be answered with 403.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrInsufficientRole) || errors.Is(err, ErrOwnershipMismatch)
}
