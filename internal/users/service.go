package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo       Repository
	bcryptCost int
	perPage    int
	now        func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, bcryptCost, perPage int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: bcryptCost, perPage: perPage, now: time.Now}
}

// Index lists users matching req with their roles.
func (s *Service) Index(ctx context.Context, req ListRequest) (query.Page[User], error) {
	return s.repo.List(ctx, query.Index{
		Filters: filter.Values{
			"search": req.Search,
			"roles":  req.Roles,
		},
		Definition: Filters,
		With:       []string{"roles"},
		Page:       query.PageRequest{Page: req.Page, PerPage: req.PerPage}.Normalize(s.perPage),
	})
}

// Get returns a user with roles.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// FindByEmail returns a user with roles.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

// Store creates a verified user holding exactly req.Role.
func (s *Service) Store(ctx context.Context, req CreateRequest) (User, error) {
	role, ok := rbac.ParseRoleName(req.Role)
	if !ok {
		return User{}, shared.NewValidationError("role", "The selected role is invalid.")
	}
	email := strings.TrimSpace(req.Email)
	taken, err := s.repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return User{}, shared.NewValidationError("email", "The email has already been taken.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	verified := s.now().UTC()
	return s.repo.Create(ctx, User{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		EmailVerifiedAt: &verified,
		PasswordHash:    string(hash),
	}, role)
}

// Update edits the user with id.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	var changes Changes
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		changes.Name = &name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		taken, err := s.repo.EmailTaken(ctx, email, id)
		if err != nil {
			return User{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return User{}, shared.NewValidationError("email", "The email has already been taken.")
		}
		changes.Email = &email
	}
	if req.Password != nil {
		if req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password {
			return User{}, shared.NewValidationError("password", "The password field confirmation does not match.")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		hashed := string(hash)
		changes.PasswordHash = &hashed
	}
	return s.repo.Update(ctx, id, changes)
}

// Destroy deletes the user with id.
func (s *Service) Destroy(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
