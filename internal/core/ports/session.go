package ports

import (
	"context"

	"github.com/marketplace/storefront/internal/core/domain"
)

// ChangeReason explains why the session changed.
type ChangeReason string

const (
	ReasonLogin        ChangeReason = "login"
	ReasonLogout       ChangeReason = "logout"
	ReasonExpired      ChangeReason = "expired"
	ReasonInvalid      ChangeReason = "invalid"
	ReasonUnauthorized ChangeReason = "unauthorized"
)

// SessionReader exposes the current credential bundle.
type SessionReader interface {
	Bundle() domain.CredentialBundle
	IsAuthenticated() bool
}

// SessionInvalidator is the part of the session the HTTP pipeline is allowed to mutate.
type SessionInvalidator interface {
	SessionReader
	Invalidate(ctx context.Context, reason ChangeReason)
	// InvalidateToken clears the session only while it still holds token and
	// reports whether it did.
	InvalidateToken(ctx context.Context, token string, reason ChangeReason) bool
}

// TokenDecoder decodes a bearer token without verifying it.
type TokenDecoder interface {
	Decode(token string) (domain.Claims, error)
}

// Navigator tracks the current navigable location of the client.
type Navigator interface {
	Location() string
	Navigate(path string)
}
