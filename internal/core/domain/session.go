package domain

import "time"

// Role is the closed set of account roles issued by the marketplace API.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleProfessional Role = "PROFESSIONAL"
	RoleCustomer     Role = "CUSTOMER"
	RoleDeveloper    Role = "DEVELOPER"
)

// Valid reports whether r is one of the known roles. The empty role is not valid.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessional, RoleCustomer, RoleDeveloper:
		return true
	}
	return false
}

// CredentialBundle is the session record kept in memory and mirrored to
// persistent storage. The zero value is the anonymous session.
type CredentialBundle struct {
	Token    string
	Username string
	UserID   int64
	Role     Role
}

// Authenticated reports whether the bundle carries a token.
func (b CredentialBundle) Authenticated() bool {
	return b.Token != ""
}

// User returns the identity part of the bundle.
func (b CredentialBundle) User() User {
	return User{Username: b.Username, UserID: b.UserID, Role: b.Role}
}

// User is the identity exposed to consumers of the session.
type User struct {
	Username string `json:"username"`
	UserID   int64  `json:"idUser"`
	Role     Role   `json:"rol"`
}

// Claims holds the fields decoded from a bearer token payload.
// ExpiresAt is zero when the token has no exp claim.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Token     string
	Username  string
	UserID    int64
	Role      Role
}

// Expired reports whether the claims expire at or before now.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}
