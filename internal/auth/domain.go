package auth

import "github.com/Sanilblank/blog-api/internal/users"

// RegisterRequest is the self-service sign-up payload. Registered accounts
// are always authors.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned after register and login.
type Session struct {
	User  users.User `json:"user"`
	Token string     `json:"token"`
}
