package validation

import "github.com/marketplace/storefront/internal/core/domain"

// LoginForm is what the user types to sign in.
type LoginForm struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (f LoginForm) Request() domain.AuthRequest {
	return domain.AuthRequest{Email: f.Email, Password: f.Password}
}

// RegisterForm is what the user types to create an account.
type RegisterForm struct {
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f RegisterForm) Request() domain.AuthRequest {
	return domain.AuthRequest{Email: f.Email, Password: f.Password}
}
