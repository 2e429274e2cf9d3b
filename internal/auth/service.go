package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/users"
)

// Accounts is the slice of the user service authentication relies on.
type Accounts interface {
	Store(ctx context.Context, req users.CreateRequest) (users.User, error)
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Tokens issues and resolves access tokens.
type Tokens interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (string, int64, error)
	Revoke(ctx context.Context, id string) error
}

// ActorLoader resolves a user id to its roles.
type ActorLoader interface {
	LoadActor(ctx context.Context, userID int64) (rbac.Actor, error)
}

// Service wraps authentication business rules.
type Service struct {
	accounts Accounts
	tokens   Tokens
	actors   ActorLoader
}

// NewService constructs a new Service.
func NewService(accounts Accounts, tokens Tokens, actors ActorLoader) *Service {
	return &Service{accounts: accounts, tokens: tokens, actors: actors}
}

// Register creates an author account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	user, err := s.accounts.Store(ctx, users.CreateRequest{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Role:                 string(rbac.RoleAuthor),
	})
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, user)
}

// Login validates email/password credentials and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (Session, error) {
	user, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Session{}, shared.ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return Session{}, shared.ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// Logout revokes the token that authenticated ctx.
func (s *Service) Logout(ctx context.Context) error {
	id := shared.TokenIDFromContext(ctx)
	if id == "" {
		return shared.ErrUnauthenticated
	}
	return s.tokens.Revoke(ctx, id)
}

// Resolve maps a bearer token to its token id and actor.
func (s *Service) Resolve(ctx context.Context, token string) (string, rbac.Actor, error) {
	id, userID, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		return "", rbac.Actor{}, err
	}
	actor, err := s.actors.LoadActor(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The account was removed after the token was issued.
			_ = s.tokens.Revoke(ctx, id)
			return "", rbac.Actor{}, shared.ErrUnauthenticated
		}
		return "", rbac.Actor{}, err
	}
	return id, actor, nil
}

func (s *Service) issue(ctx context.Context, user users.User) (Session, error) {
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}
