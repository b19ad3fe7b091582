package errors

import (
	"errors"
)

var (
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrUnknownRole          = errors.New("unknown role")

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")

	// ErrStorage marks transient persistence failures that were already retried once.
	ErrStorage = errors.New("storage error")

	// ErrSigning marks signing misconfiguration. It aborts startup, never a request.
	ErrSigning = errors.New("token signing misconfigured")
)
