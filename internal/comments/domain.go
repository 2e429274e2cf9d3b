package comments

import (
	"time"

	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/users"
)

// Comment is a user's reply attached to a commentable record.
type Comment struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	Commentable shared.Ref     `json:"commentable"`
	Body        string         `json:"body"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Author      *users.Summary `json:"author,omitempty"`
}

// GetID returns the comment id.
func (c Comment) GetID() int64 { return c.ID }

// OwnerID returns the author's user id.
func (c Comment) OwnerID() int64 { return c.UserID }

// Parent returns the record the comment is attached to.
func (c Comment) Parent() shared.Ref { return c.Commentable }

// ListRequest carries the query parameters of the comment index.
type ListRequest struct {
	Page    int    `query:"page" validate:"omitempty,min=1"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search  string `query:"search"`
	Author  int64  `query:"author" validate:"omitempty,min=1"`
}

// SaveRequest is the payload for writing or editing a comment.
type SaveRequest struct {
	Body string `json:"body" validate:"required"`
}
