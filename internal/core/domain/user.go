package domain

import "time"

// Account models a registered user on the marketplace backend.
type Account struct {
	ID           int64     `json:"idUser"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"rol"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthRequest is the body of the login and register endpoints.
type AuthRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthResponse carries the bearer token issued by login or register.
// Register may answer without a token.
type AuthResponse struct {
	Token string `json:"token,omitempty"`
}
