// Package common defines shared constants and sentinel errors used across
// client and server layers of finsync. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Registration / credential errors.
	ErrInvalidInput       = errors.New("invalid input")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username exists")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooSimple  = errors.New("password needs letter and digit")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Recovery-key reset errors.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRecoveryKey = errors.New("invalid recovery key")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
