package comments

import (
	"context"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/policy"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Service handles comment business logic.
type Service struct {
	repo    Repository
	perPage int
}

// NewService builds Service instance.
func NewService(repo Repository, perPage int) *Service {
	return &Service{repo: repo, perPage: perPage}
}

// Index lists the comments of post matching req, with their authors.
func (s *Service) Index(ctx context.Context, post policy.Owned, req ListRequest) (query.Page[Comment], error) {
	return s.repo.List(ctx, query.Index{
		Where: map[string]any{
			"commentable_type": string(shared.KindPost),
			"commentable_id":   post.GetID(),
		},
		Filters: filter.Values{
			"search": req.Search,
			"author": req.Author,
		},
		Definition: Filters,
		With:       []string{"author"},
		Page:       query.PageRequest{Page: req.Page, PerPage: req.PerPage}.Normalize(s.perPage),
	})
}

// Get returns the comment with id.
func (s *Service) Get(ctx context.Context, id int64) (Comment, error) {
	return s.repo.Get(ctx, id)
}

// Create attaches a comment by actor to post.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, post policy.Owned, req SaveRequest) (Comment, error) {
	return s.repo.Create(ctx, Comment{
		UserID:      actor.ID,
		Commentable: shared.Ref{Kind: shared.KindPost, ID: post.GetID()},
		Body:        req.Body,
	})
}

// Update replaces the text of comment.
func (s *Service) Update(ctx context.Context, comment Comment, req SaveRequest) (Comment, error) {
	return s.repo.UpdateBody(ctx, comment.ID, req.Body)
}

// Delete removes comment.
func (s *Service) Delete(ctx context.Context, comment Comment) error {
	return s.repo.Delete(ctx, comment.ID)
}
