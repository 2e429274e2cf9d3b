package categories

import "time"

// Category groups posts. Every post belongs to exactly one category.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListRequest carries the query parameters of the category index.
type ListRequest struct {
	Page    int    `query:"page" validate:"omitempty,min=1"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search  string `query:"search"`
}

// SaveRequest is the payload for creating or renaming a category.
type SaveRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
