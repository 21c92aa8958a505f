// Package common defines shared constants and sentinel errors used across
// the bluelink service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Issuance errors, in the order the issuer checks them.
	ErrorInsecureTransport  = errors.New("insecure transport")
	ErrorOriginNotAllowed   = errors.New("origin not allowed")
	ErrorTooManyAttempts    = errors.New("too many attempts")
	ErrorMissingCredentials = errors.New("missing credentials")
	ErrorInvalidCredential  = errors.New("invalid credential")

	// Redemption errors.
	ErrorInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrorNoIdentityAvailable   = errors.New("no identity available")

	// Identity provisioning errors.
	ErrorUserCreationFailed = errors.New("user creation failed")

	// Session errors (invalid or malformed session token).
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrSessionExpired      = errors.New("session expired")
)
