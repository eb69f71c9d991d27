package domain

import "errors"

// Error kinds shared by the services and the HTTP layer.
// Store failures are not listed here: they are wrapped driver errors and map to 500.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
)
