package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Service handles category business logic.
type Service struct {
	repo    Repository
	perPage int
}

// NewService builds Service instance.
func NewService(repo Repository, perPage int) *Service {
	return &Service{repo: repo, perPage: perPage}
}

// Index lists categories matching req.
func (s *Service) Index(ctx context.Context, req ListRequest) (query.Page[Category], error) {
	return s.repo.List(ctx, query.Index{
		Filters:    filter.Values{"search": req.Search},
		Definition: Filters,
		Page:       query.PageRequest{Page: req.Page, PerPage: req.PerPage}.Normalize(s.perPage),
	})
}

// Get returns the category with id.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a category with a slug derived from its name.
func (s *Service) Create(ctx context.Context, req SaveRequest) (Category, error) {
	category, err := s.prepare(ctx, req, 0)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, category)
}

// Update renames the category with id and regenerates its slug.
func (s *Service) Update(ctx context.Context, id int64, req SaveRequest) (Category, error) {
	category, err := s.prepare(ctx, req, id)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Update(ctx, id, category)
}

// Delete removes the category with id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) prepare(ctx context.Context, req SaveRequest, exceptID int64) (Category, error) {
	name := strings.TrimSpace(req.Name)
	slug := shared.Slugify(name)
	if slug == "" {
		return Category{}, shared.NewValidationError("name", "The name field must contain letters or digits.")
	}
	taken, err := s.repo.NameTaken(ctx, name, exceptID)
	if err != nil {
		return Category{}, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return Category{}, shared.NewValidationError("name", "The name has already been taken.")
	}
	return Category{Name: name, Slug: slug}, nil
}
