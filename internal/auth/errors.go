package auth

import "errors"

var (
	// ErrInvalidToken indicates the token failed validation. Callers must
	// not distinguish why; the reason is deliberately collapsed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret is returned when no signing secret is configured
	// and the fallback key is not allowed.
	ErrMissingSecret = errors.New("auth: signing secret is not configured")

	ErrNotFound           = errors.New("auth: user not found")
	ErrDuplicateEmail     = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInactiveAccount    = errors.New("auth: account is inactive")
)
