package services

import "errors"

// Authentication error taxonomy. Handlers map these to HTTP responses;
// anything touching account existence must surface a generic message.
var (
	// ErrInvalidCredentials covers both wrong password and unknown email so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAccountNotActive = errors.New("account is not active")
	ErrEmailNotVerified = errors.New("email address is not verified")

	// ErrInvalidOrExpiredToken is returned for refresh, reset and MFA
	// challenge tokens that are unknown or past their window.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrSecurityViolation signals refresh-token reuse. By the time callers
	// see it, every session of the affected user has been revoked.
	ErrSecurityViolation = errors.New("token reuse detected, all sessions have been revoked")

	ErrMFARequired    = errors.New("multi-factor authentication required")
	ErrMFAInvalidCode = errors.New("invalid verification code")
	ErrMFALockedOut   = errors.New("too many failed attempts, try again later")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrSessionNotFound   = errors.New("session not found")
)
