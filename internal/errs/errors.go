package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrUnauthorized covers bad credentials and invalid/expired tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBackend marks a remote storage transport or status failure.
	// It is never converted to an empty result; callers decide how to surface it.
	ErrBackend = errors.New("backend_unavailable")
)
