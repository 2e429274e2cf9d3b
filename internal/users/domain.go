package users

import (
	"time"

	"github.com/Sanilblank/blog-api/internal/rbac"
)

// User is a platform account.
type User struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	EmailVerifiedAt *time.Time      `json:"email_verified_at"`
	PasswordHash    string          `json:"-"`
	Roles           []rbac.RoleName `json:"roles"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// GetID returns the user id.
func (u User) GetID() int64 { return u.ID }

// Actor returns the user as an authorization subject.
func (u User) Actor() rbac.Actor {
	return rbac.Actor{ID: u.ID, Roles: u.Roles}
}

// Summary is the public projection embedded in posts and comments.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Changes holds the fields an update may touch. Nil fields are kept.
type Changes struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// ListRequest carries the query parameters of the user index.
type ListRequest struct {
	Page    int      `query:"page" validate:"omitempty,min=1"`
	PerPage int      `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search  string   `query:"search"`
	Roles   []string `query:"roles" validate:"omitempty,dive,oneof=admin author"`
}

// CreateRequest is the payload for creating a user with an explicit role.
type CreateRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
	Role                 string `json:"role" validate:"required,oneof=admin author"`
}

// UpdateRequest is the payload for editing a user. Absent fields are kept.
type UpdateRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email                *string `json:"email" validate:"omitempty,email,max=255"`
	Password             *string `json:"password" validate:"omitempty,min=8"`
	PasswordConfirmation *string `json:"password_confirmation"`
}
