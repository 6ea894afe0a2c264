// errors/auth_errors.go
package errors

import "errors"

var (
	// Token layer. All of these map to a generic 401 at the guard boundary.
	ErrMalformedToken = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("expired token")

	// Refresh session layer. A mismatch is indistinguishable from replay of
	// a rotated-out token and is treated as one.
	ErrSessionMismatch = errors.New("refresh session mismatch")

	// Guard layer.
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMissingRole        = errors.New("missing required role")
	ErrMissingPermission  = errors.New("missing required permission")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInternalServer    = errors.New("internal server error")
	ErrDatabaseOperation = errors.New("database operation failed")
)
