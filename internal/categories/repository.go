package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Schema describes the categories table for filters.
var Schema = query.Schema{Table: "categories"}

const categoryColumns = "categories.id, categories.name, categories.slug, categories.created_at, categories.updated_at"

// Repository defines persistence operations for categories.
type Repository interface {
	List(ctx context.Context, ix query.Index) (query.Page[Category], error)
	Get(ctx context.Context, id int64) (Category, error)
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int64, category Category) (Category, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool   *pgxpool.Pool
	lister query.Lister[Category]
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{
		pool: pool,
		lister: query.Lister[Category]{
			Schema:  Schema,
			Columns: categoryColumns,
			Scan:    pgx.RowToStructByPos[Category],
		},
	}
}

// List returns a filtered page of categories.
func (r *PGRepository) List(ctx context.Context, ix query.Index) (query.Page[Category], error) {
	return r.lister.List(ctx, r.pool, ix)
}

// Get fetches a category by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Category, error) {
	return r.lister.Get(ctx, r.pool, id)
}

// NameTaken reports whether another category has name, ignoring case.
func (r *PGRepository) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1) AND id <> $2)`,
		name, exceptID).Scan(&taken)
	return taken, err
}

// Create inserts a category.
func (r *PGRepository) Create(ctx context.Context, category Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO categories (name, slug) VALUES ($1, $2)
RETURNING id, created_at, updated_at`, category.Name, category.Slug,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, shared.NewValidationError("name", "The name has already been taken.")
		}
		return Category{}, err
	}
	return category, nil
}

// Update renames a category.
func (r *PGRepository) Update(ctx context.Context, id int64, category Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `
UPDATE categories SET name = $1, slug = $2, updated_at = now()
WHERE id = $3
RETURNING id, name, slug, created_at, updated_at`, category.Name, category.Slug, id,
	).Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, shared.NewValidationError("name", "The name has already been taken.")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return category, nil
}

// Delete removes a category that no post references.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: category has posts", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LoadMany returns the categories with the given ids.
func LoadMany(ctx context.Context, conn db.DBTX, ids []int64) (map[int64]Category, error) {
	out := make(map[int64]Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn.Query(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ANY($1::bigint[])", ids)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Category])
	if err != nil {
		return nil, err
	}
	for _, c := range items {
		out[c.ID] = c
	}
	return out, nil
}

// Exists reports whether a category with id exists.
func Exists(ctx context.Context, conn db.DBTX, id int64) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

var _ Repository = (*PGRepository)(nil)
