package posts

import (
	"time"

	"github.com/Sanilblank/blog-api/internal/categories"
	"github.com/Sanilblank/blog-api/internal/tags"
	"github.com/Sanilblank/blog-api/internal/users"
)

// Post is an article written by a user in one category.
type Post struct {
	ID         int64                `json:"id"`
	UserID     int64                `json:"user_id"`
	CategoryID int64                `json:"category_id"`
	Title      string               `json:"title"`
	Body       string               `json:"body"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Author     *users.Summary       `json:"author,omitempty"`
	Category   *categories.Category `json:"category,omitempty"`
	Tags       []tags.Tag           `json:"tags,omitempty"`
}

// GetID returns the post id.
func (p Post) GetID() int64 { return p.ID }

// OwnerID returns the author's user id.
func (p Post) OwnerID() int64 { return p.UserID }

// ListRequest carries the query parameters of the post index.
type ListRequest struct {
	Page     int      `query:"page" validate:"omitempty,min=1"`
	PerPage  int      `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search   string   `query:"search"`
	Category int64    `query:"category" validate:"omitempty,min=1"`
	Tags     []string `query:"tags" validate:"omitempty,dive,number,startsnotwith=0"`
	Author   int64    `query:"author" validate:"omitempty,min=1"`
}

// SaveRequest is the payload for creating or replacing a post.
type SaveRequest struct {
	Title      string  `json:"title" validate:"required,max=255"`
	Body       string  `json:"body" validate:"required"`
	CategoryID int64   `json:"category_id" validate:"required,min=1"`
	Tags       []int64 `json:"tags" validate:"required,min=1,dive,min=1"`
}
