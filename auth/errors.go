package auth

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is wrapped by every failure of the request gate, so
// callers can answer all of them the same way.
var ErrUnauthenticated = errors.New("unauthenticated")

var (
	ErrMissingCredentials = fmt.Errorf("%w: missing or malformed bearer credentials", ErrUnauthenticated)
	ErrTokenInvalid       = fmt.Errorf("%w: token invalid", ErrUnauthenticated)
	ErrSubjectMissing     = fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrUnauthenticated)
)

// Reason returns a short operator-facing label for an authentication
// failure. It never contains token material.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrSubjectMissing):
		return "subject_missing"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	default:
		return "internal"
	}
}
