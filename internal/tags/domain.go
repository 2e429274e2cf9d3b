package tags

import "time"

// Tag labels posts. A post carries any number of tags.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListRequest carries the query parameters of the tag index.
type ListRequest struct {
	Page    int    `query:"page" validate:"omitempty,min=1"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100"`
	Search  string `query:"search"`
}

// SaveRequest is the payload for creating or renaming a tag.
type SaveRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
