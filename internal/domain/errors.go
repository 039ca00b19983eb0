package domain

import "errors"

// Sentinel errors for request-level failures. Action failures never surface
// as errors; they are recorded as results instead.
//
//	return fmt.Errorf("run %q: %w", key, domain.ErrUnknownAction)
var (
	// ErrUnknownAction indicates no action with the requested key exists.
	ErrUnknownAction = errors.New("unknown action")

	// ErrWrongContext indicates the action exists but cannot be invoked
	// from the requested scope.
	ErrWrongContext = errors.New("action not available in this context")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates an upstream API throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotConfigured indicates a backend needed by an operation has no
	// configuration.
	ErrNotConfigured = errors.New("not configured")
)
