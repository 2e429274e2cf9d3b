package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Service persists roles and resolves actors from storage.
type Service struct {
	pool     *pgxpool.Pool
	queries  *Queries
	registry *Registry
}

// NewService constructs a Service backed by pool.
func NewService(pool *pgxpool.Pool, registry *Registry) *Service {
	return &Service{pool: pool, queries: NewQueries(pool), registry: registry}
}

// Registry exposes the registry the service seeds from.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Sync upserts every role and permission of the registry and replaces each
// role's grant set with the registry's.
func (s *Service) Sync(ctx context.Context) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := s.queries.WithTx(tx)
		permIDs := make(map[Permission]int64)
		for _, perm := range AllPermissions() {
			id, err := q.UpsertPermission(ctx, perm)
			if err != nil {
				return fmt.Errorf("rbac: upsert permission %s: %w", perm, err)
			}
			permIDs[perm] = id
		}
		for _, role := range s.registry.Roles() {
			roleID, err := q.UpsertRole(ctx, role)
			if err != nil {
				return fmt.Errorf("rbac: upsert role %s: %w", role, err)
			}
			granted := s.registry.Permissions(role)
			ids := make([]int64, 0, len(granted))
			for _, perm := range granted {
				ids = append(ids, permIDs[perm])
			}
			if err := q.ReplaceRolePermissions(ctx, roleID, ids); err != nil {
				return fmt.Errorf("rbac: sync role %s: %w", role, err)
			}
		}
		return nil
	})
}

// AssignRole gives userID the role.
func (s *Service) AssignRole(ctx context.Context, userID int64, role RoleName) error {
	return s.queries.AssignRole(ctx, userID, role)
}

// LoadActor builds the actor for userID from stored role assignments.
func (s *Service) LoadActor(ctx context.Context, userID int64) (Actor, error) {
	exists, err := s.queries.UserExists(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	if !exists {
		return Actor{}, shared.ErrNotFound
	}
	roles, err := s.queries.RolesFor(ctx, []int64{userID})
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: userID, Roles: roles[userID]}, nil
}

// ListRoles returns the stored roles with their permissions.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.queries.ListRoles(ctx)
}
