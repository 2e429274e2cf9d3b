package tags

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Schema describes the tags table for filters.
var Schema = query.Schema{Table: "tags"}

const tagColumns = "tags.id, tags.name, tags.slug, tags.created_at, tags.updated_at"

// Repository defines persistence operations for tags.
type Repository interface {
	List(ctx context.Context, ix query.Index) (query.Page[Tag], error)
	Get(ctx context.Context, id int64) (Tag, error)
	NameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	Create(ctx context.Context, tag Tag) (Tag, error)
	Update(ctx context.Context, id int64, tag Tag) (Tag, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool   *pgxpool.Pool
	lister query.Lister[Tag]
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{
		pool: pool,
		lister: query.Lister[Tag]{
			Schema:  Schema,
			Columns: tagColumns,
			Scan:    pgx.RowToStructByPos[Tag],
		},
	}
}

// List returns a filtered page of tags.
func (r *PGRepository) List(ctx context.Context, ix query.Index) (query.Page[Tag], error) {
	return r.lister.List(ctx, r.pool, ix)
}

// Get fetches a tag by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Tag, error) {
	return r.lister.Get(ctx, r.pool, id)
}

// NameTaken reports whether another tag has name, ignoring case.
func (r *PGRepository) NameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE lower(name) = lower($1) AND id <> $2)`,
		name, exceptID).Scan(&taken)
	return taken, err
}

// Create inserts a tag.
func (r *PGRepository) Create(ctx context.Context, tag Tag) (Tag, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO tags (name, slug) VALUES ($1, $2)
RETURNING id, created_at, updated_at`, tag.Name, tag.Slug,
	).Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Tag{}, shared.NewValidationError("name", "The name has already been taken.")
		}
		return Tag{}, err
	}
	return tag, nil
}

// Update renames a tag.
func (r *PGRepository) Update(ctx context.Context, id int64, tag Tag) (Tag, error) {
	err := r.pool.QueryRow(ctx, `
UPDATE tags SET name = $1, slug = $2, updated_at = now()
WHERE id = $3
RETURNING id, name, slug, created_at, updated_at`, tag.Name, tag.Slug, id,
	).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Tag{}, shared.NewValidationError("name", "The name has already been taken.")
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return Tag{}, shared.ErrNotFound
		}
		return Tag{}, err
	}
	return tag, nil
}

// Delete removes a tag and detaches it from every post.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ForTaggables returns the tags attached to each record of kind.
func ForTaggables(ctx context.Context, conn db.DBTX, kind shared.ResourceKind, ids []int64) (map[int64][]Tag, error) {
	out := make(map[int64][]Tag, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := conn.Query(ctx, `
SELECT tg.taggable_id, tags.id, tags.name, tags.slug, tags.created_at, tags.updated_at
FROM taggables tg
JOIN tags ON tags.id = tg.tag_id
WHERE tg.taggable_type = $1 AND tg.taggable_id = ANY($2::bigint[])
ORDER BY tags.id`, string(kind), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			owner int64
			t     Tag
		)
		if err := rows.Scan(&owner, &t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], t)
	}
	return out, rows.Err()
}

// Missing returns the ids that match no tag.
func Missing(ctx context.Context, conn db.DBTX, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := conn.Query(ctx, `
SELECT wanted FROM unnest($1::bigint[]) AS wanted
WHERE NOT EXISTS (SELECT 1 FROM tags WHERE tags.id = wanted)
ORDER BY wanted`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// Sync makes ids the exact tag set of the record (kind, id).
func Sync(ctx context.Context, conn db.DBTX, kind shared.ResourceKind, id int64, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	if _, err := conn.Exec(ctx, `
DELETE FROM taggables
WHERE taggable_type = $1 AND taggable_id = $2 AND NOT (tag_id = ANY($3::bigint[]))`,
		string(kind), id, ids); err != nil {
		return err
	}
	_, err := conn.Exec(ctx, `
INSERT INTO taggables (tag_id, taggable_type, taggable_id)
SELECT DISTINCT unnest($3::bigint[]), $1::text, $2::bigint
ON CONFLICT DO NOTHING`, string(kind), id, ids)
	return err
}

// Detach removes every tag from the record (kind, id).
func Detach(ctx context.Context, conn db.DBTX, kind shared.ResourceKind, id int64) error {
	_, err := conn.Exec(ctx, `DELETE FROM taggables WHERE taggable_type = $1 AND taggable_id = $2`, string(kind), id)
	return err
}

var _ Repository = (*PGRepository)(nil)
