package models

import "errors"

// Sentinel errors for common failure conditions. Handlers map these to HTTP
// status codes at the request boundary; internal detail never reaches clients.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("insufficient permissions")
	ErrInternalServer = errors.New("internal server error")

	// Authentication errors. Invalid credentials is a single signal whether
	// the email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrTokenInvalid       = errors.New("invalid or expired token")

	// Out-of-band token errors share one generic signal so callers cannot
	// distinguish an expired token from one that never existed.
	ErrActionTokenInvalid = errors.New("invalid or expired action token")
)
