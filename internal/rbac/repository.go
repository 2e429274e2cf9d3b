package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Queries holds the RBAC statements. It runs against a pool or a transaction.
type Queries struct {
	db db.DBTX
}

// NewQueries binds the statements to conn.
func NewQueries(conn db.DBTX) *Queries {
	return &Queries{db: conn}
}

// WithTx returns a copy bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertRole = `
INSERT INTO roles (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET updated_at = now()
RETURNING id`

// UpsertRole creates the role if missing and returns its id.
func (q *Queries) UpsertRole(ctx context.Context, name RoleName) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, upsertRole, string(name)).Scan(&id)
	return id, err
}

const upsertPermission = `
INSERT INTO permissions (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET updated_at = now()
RETURNING id`

// UpsertPermission creates the permission if missing and returns its id.
func (q *Queries) UpsertPermission(ctx context.Context, name Permission) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, upsertPermission, string(name)).Scan(&id)
	return id, err
}

// ReplaceRolePermissions makes permissionIDs the exact grant set of roleID.
func (q *Queries) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if permissionIDs == nil {
		permissionIDs = []int64{}
	}
	if _, err := q.db.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND NOT (permission_id = ANY($2::bigint[]))`,
		roleID, permissionIDs,
	); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `
INSERT INTO role_permissions (role_id, permission_id)
SELECT $1::bigint, unnest($2::bigint[])
ON CONFLICT DO NOTHING`, roleID, permissionIDs)
	return err
}

// AssignRole attaches role to userID. Assigning a held role is a no-op.
func (q *Queries) AssignRole(ctx context.Context, userID int64, role RoleName) error {
	var roleID int64
	err := q.db.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, string(role)).Scan(&roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("rbac: role %q not seeded: %w", role, shared.ErrNotFound)
		}
		return err
	}
	_, err = q.db.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, roleID)
	return err
}

// RolesFor returns the role names held by each of userIDs.
func (q *Queries) RolesFor(ctx context.Context, userIDs []int64) (map[int64][]RoleName, error) {
	out := make(map[int64][]RoleName, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := q.db.Query(ctx, `
SELECT ur.user_id, r.name
FROM user_roles ur
JOIN roles r ON r.id = ur.role_id
WHERE ur.user_id = ANY($1::bigint[])
ORDER BY r.id`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			userID int64
			name   string
		)
		if err := rows.Scan(&userID, &name); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], RoleName(name))
	}
	return out, rows.Err()
}

// UserExists reports whether a user row with id exists.
func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ListRoles returns every role with its permission names.
func (q *Queries) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := q.db.Query(ctx, `
SELECT r.id, r.name, r.created_at, r.updated_at,
       COALESCE(array_agg(p.name ORDER BY p.id) FILTER (WHERE p.id IS NOT NULL), '{}')
FROM roles r
LEFT JOIN role_permissions rp ON rp.role_id = r.id
LEFT JOIN permissions p ON p.id = rp.permission_id
GROUP BY r.id
ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var (
			role  Role
			name  string
			perms []string
		)
		if err := rows.Scan(&role.ID, &name, &role.CreatedAt, &role.UpdatedAt, &perms); err != nil {
			return nil, err
		}
		role.Name = RoleName(name)
		for _, p := range perms {
			role.Permissions = append(role.Permissions, Permission(p))
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
