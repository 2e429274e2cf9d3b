package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Schema describes the users table for filters.
var Schema = query.Schema{
	Table: "users",
	Relations: map[string]query.Relation{
		"roles": {
			Table: "roles",
			Join:  "JOIN user_roles {inner}_pivot ON {inner}_pivot.role_id = {inner}.id",
			On:    "{inner}_pivot.user_id = {outer}.id",
		},
	},
}

const userColumns = "users.id, users.name, users.email, users.email_verified_at, users.password_hash, users.created_at, users.updated_at"

// Repository defines persistence operations for users.
type Repository interface {
	List(ctx context.Context, ix query.Index) (query.Page[User], error)
	Get(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	Create(ctx context.Context, user User, role rbac.RoleName) (User, error)
	Update(ctx context.Context, id int64, changes Changes) (User, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool   *pgxpool.Pool
	lister query.Lister[User]
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, lister: newLister()}
}

func newLister() query.Lister[User] {
	return query.Lister[User]{
		Schema:  Schema,
		Columns: userColumns,
		Scan:    scanUser,
		Loaders: map[string]query.Loader[User]{
			"roles": loadRoles,
		},
	}
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.EmailVerifiedAt, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func loadRoles(ctx context.Context, conn db.DBTX, items []User) error {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	roles, err := rbac.NewQueries(conn).RolesFor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Roles = roles[items[i].ID]
		if items[i].Roles == nil {
			items[i].Roles = []rbac.RoleName{}
		}
	}
	return nil
}

// List returns a filtered page of users.
func (r *PGRepository) List(ctx context.Context, ix query.Index) (query.Page[User], error) {
	return r.lister.List(ctx, r.pool, ix)
}

// Get fetches a user with roles.
func (r *PGRepository) Get(ctx context.Context, id int64) (User, error) {
	return r.lister.Get(ctx, r.pool, id, "roles")
}

// FindByEmail fetches a user with roles by case-insensitive email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE lower(users.email) = lower($1)", email)
	if err != nil {
		return User{}, err
	}
	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	items := []User{user}
	if err := loadRoles(ctx, r.pool, items); err != nil {
		return User{}, err
	}
	return items[0], nil
}

// EmailTaken reports whether another user already uses email.
func (r *PGRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`,
		email, exceptID).Scan(&taken)
	return taken, err
}

// Create inserts the user and assigns role in one transaction.
func (r *PGRepository) Create(ctx context.Context, user User, role rbac.RoleName) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
INSERT INTO users (name, email, email_verified_at, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at`,
			user.Name, user.Email, user.EmailVerifiedAt, user.PasswordHash,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return shared.NewValidationError("email", "The email has already been taken.")
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if err := rbac.NewQueries(tx).AssignRole(ctx, user.ID, role); err != nil {
			return fmt.Errorf("assign role: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	user.Roles = []rbac.RoleName{role}
	return user, nil
}

// Update applies changes and returns the stored user.
func (r *PGRepository) Update(ctx context.Context, id int64, changes Changes) (User, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.PasswordHash != nil {
		add("password_hash", *changes.PasswordHash)
	}
	args = append(args, id)
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = $"+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, shared.NewValidationError("email", "The email has already been taken.")
		}
		return User{}, err
	}
	if tag.RowsAffected() == 0 {
		return User{}, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the user. Posts, comments and role links cascade; tag and
// comment links of the user's posts are removed in the same transaction.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const ownedPosts = `SELECT id FROM posts WHERE user_id = $1`
		if _, err := tx.Exec(ctx,
			`DELETE FROM taggables WHERE taggable_type = 'post' AND taggable_id IN (`+ownedPosts+`)`, id); err != nil {
			return fmt.Errorf("detach post tags: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM comments WHERE commentable_type = 'post' AND commentable_id IN (`+ownedPosts+`)`, id); err != nil {
			return fmt.Errorf("delete post comments: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// LoadSummaries returns the public projection of the given users.
func LoadSummaries(ctx context.Context, conn db.DBTX, ids []int64) (map[int64]Summary, error) {
	out := make(map[int64]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn.Query(ctx, `SELECT id, name, email FROM users WHERE id = ANY($1::bigint[])`, ids)
	if err != nil {
		return nil, err
	}
	summaries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Summary])
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
