package posts

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Service handles post business logic.
type Service struct {
	repo    Repository
	perPage int
}

// NewService builds Service instance.
func NewService(repo Repository, perPage int) *Service {
	return &Service{repo: repo, perPage: perPage}
}

// Index lists posts matching req with author, category and tags.
func (s *Service) Index(ctx context.Context, req ListRequest) (query.Page[Post], error) {
	return s.repo.List(ctx, query.Index{
		Filters: filter.Values{
			"search":   req.Search,
			"category": req.Category,
			"tags":     req.Tags,
			"author":   req.Author,
		},
		Definition: Filters,
		With:       Relations,
		Page:       query.PageRequest{Page: req.Page, PerPage: req.PerPage}.Normalize(s.perPage),
	})
}

// Get returns a post with its relations.
func (s *Service) Get(ctx context.Context, id int64) (Post, error) {
	return s.repo.Get(ctx, id)
}

// Create publishes a post owned by actor.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, req SaveRequest) (Post, error) {
	tagIDs, err := s.check(ctx, req)
	if err != nil {
		return Post{}, err
	}
	return s.repo.Create(ctx, Post{
		UserID:     actor.ID,
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
	}, tagIDs)
}

// Update replaces the content of post. Ownership is unchanged.
func (s *Service) Update(ctx context.Context, post Post, req SaveRequest) (Post, error) {
	tagIDs, err := s.check(ctx, req)
	if err != nil {
		return Post{}, err
	}
	return s.repo.Update(ctx, post.ID, Post{
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
	}, tagIDs)
}

// Delete removes post.
func (s *Service) Delete(ctx context.Context, post Post) error {
	return s.repo.Delete(ctx, post.ID)
}

// check verifies the referenced category and tags exist and returns the
// deduplicated tag ids.
func (s *Service) check(ctx context.Context, req SaveRequest) ([]int64, error) {
	verr := &shared.ValidationError{}

	ok, err := s.repo.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		verr.Add("category_id", "The selected category id is invalid.")
	}

	tagIDs := slices.Clone(req.Tags)
	slices.Sort(tagIDs)
	tagIDs = slices.Compact(tagIDs)
	missing, err := s.repo.MissingTags(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("check tags: %w", err)
	}
	for _, id := range missing {
		if i := slices.Index(req.Tags, id); i >= 0 {
			verr.Add("tags."+strconv.Itoa(i), "The selected tags."+strconv.Itoa(i)+" is invalid.")
		}
	}

	if !verr.Empty() {
		return nil, verr
	}
	return tagIDs, nil
}
