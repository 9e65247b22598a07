package domain

import "errors"

// Session errors.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrEmptyToken     = errors.New("credential bundle has no token")
)

// Transport errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransport    = errors.New("transport failure")
)

// Marketplace errors.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrValidation          = errors.New("validation failed")
)
