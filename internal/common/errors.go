// Package common defines shared constants and sentinel errors used across
// the store, service and session layers. Callers should use errors.Is to
// match these values. The text of every auth error is the message shown to
// the user.
package common

import "errors"

var (
	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors.
	ErrMissingFields           = errors.New("all fields are required")
	ErrPasswordMismatch        = errors.New("passwords do not match")
	ErrPasswordTooShort        = errors.New("password must be at least 6 characters")
	ErrCurrentPasswordRequired = errors.New("current password is required")
	ErrMissingCredentials      = errors.New("email and password are required")
	ErrUnsupportedProvider     = errors.New("unsupported social provider")

	// Conflict errors.
	ErrEmailTaken    = errors.New("this email is already registered")
	ErrUsernameTaken = errors.New("this username is already taken")

	// Auth errors. ErrInvalidCredentials covers both an unknown email and a
	// wrong password; ErrResetTokenInvalid covers both unknown and expired.
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrResetTokenInvalid       = errors.New("reset link is invalid or has expired")
	ErrWrongCurrentPassword    = errors.New("current password is incorrect")
	ErrInvalidVerificationLink = errors.New("verification link is invalid")
	ErrUserNotFound            = errors.New("user does not exist")
	ErrNotAuthenticated        = errors.New("user is not logged in")

	// Token errors (invalid or malformed signed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// userFacing lists the errors whose text may be shown to the user verbatim.
var userFacing = []error{
	ErrMissingFields,
	ErrPasswordMismatch,
	ErrPasswordTooShort,
	ErrCurrentPasswordRequired,
	ErrMissingCredentials,
	ErrUnsupportedProvider,
	ErrEmailTaken,
	ErrUsernameTaken,
	ErrInvalidCredentials,
	ErrResetTokenInvalid,
	ErrWrongCurrentPassword,
	ErrInvalidVerificationLink,
	ErrUserNotFound,
	ErrNotAuthenticated,
}

// UserMessage returns the user-facing message carried by err, or fallback
// when err does not wrap one of the known auth errors.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}
