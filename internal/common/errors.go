// Package common defines shared constants and sentinel errors used across
// SecBlog components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("email already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Login flow errors. Invalid email and invalid password are deliberately
	// collapsed into one value so callers cannot enumerate accounts.
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorMfaRequired        = errors.New("multi-factor enrollment required")
	ErrorMfaInvalid         = errors.New("invalid one-time code")
	ErrorLockedOut          = errors.New("login attempts exceeded, unlock required")
	ErrorRateLimited        = errors.New("rate limit exceeded")

	// Envelope cipher errors. A failed tag check always surfaces as
	// ErrorAuthentication, never as partial plaintext.
	ErrorAuthentication = errors.New("ciphertext authentication failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
