package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Service handles tag business logic.
type Service struct {
	repo    Repository
	perPage int
}

// NewService builds Service instance.
func NewService(repo Repository, perPage int) *Service {
	return &Service{repo: repo, perPage: perPage}
}

// Index lists tags matching req.
func (s *Service) Index(ctx context.Context, req ListRequest) (query.Page[Tag], error) {
	return s.repo.List(ctx, query.Index{
		Filters:    filter.Values{"search": req.Search},
		Definition: Filters,
		Page:       query.PageRequest{Page: req.Page, PerPage: req.PerPage}.Normalize(s.perPage),
	})
}

// Get returns the tag with id.
func (s *Service) Get(ctx context.Context, id int64) (Tag, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a tag with a slug derived from its name.
func (s *Service) Create(ctx context.Context, req SaveRequest) (Tag, error) {
	tag, err := s.prepare(ctx, req, 0)
	if err != nil {
		return Tag{}, err
	}
	return s.repo.Create(ctx, tag)
}

// Update renames the tag with id and regenerates its slug.
func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Tag, error) {
	tag, err := s.prepare(ctx, req, id)
	if err != nil {
		return Tag{}, err
	}
	return s.repo.Update(ctx, id, tag)
}

// Delete removes the tag with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) prepare(ctx context.Context, req SaveRequest, exceptID int64) (Tag, error) {
	name := strings.TrimSpace(req.Name)
	slug := shared.Slugify(name)
	if slug == "" {
		return Tag{}, shared.NewValidationError("name", "The name field must contain letters or digits.")
	}
	taken, err := s.repo.NameTaken(ctx, name, exceptID)
	if err != nil {
		return Tag{}, fmt.Errorf("check tag name: %w", err)
	}
	if taken {
		return Tag{}, shared.NewValidationError("name", "The name has already been taken.")
	}
	return Tag{Name: name, Slug: slug}, nil
}
