// Package common defines shared constants and sentinel errors used across
// client layers of the Yivi portal client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Access errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Submission errors; field details travel in client.FieldErrors.
	ErrValidation = errors.New("validation error")

	// Token errors (malformed or missing claims).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired  = errors.New("token expired")
	ErrRefreshFailed = errors.New("token refresh failed")

	// Login ceremony errors.
	ErrSessionCancelled = errors.New("session cancelled")
	ErrSessionTimeout   = errors.New("session timed out")
)
