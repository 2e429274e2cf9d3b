package comments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/users"
)

// Schema describes the comments table and the relations its filters traverse.
var Schema = query.Schema{
	Table: "comments",
	Relations: map[string]query.Relation{
		"author": {
			Table: "users",
			On:    "{inner}.id = {outer}.user_id",
		},
	},
}

const commentColumns = "comments.id, comments.user_id, comments.commentable_type, comments.commentable_id, comments.body, comments.created_at, comments.updated_at"

// Repository defines persistence operations for comments.
type Repository interface {
	List(ctx context.Context, ix query.Index) (query.Page[Comment], error)
	Get(ctx context.Context, id int64) (Comment, error)
	Create(ctx context.Context, comment Comment) (Comment, error)
	UpdateBody(ctx context.Context, id int64, body string) (Comment, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool   *pgxpool.Pool
	lister query.Lister[Comment]
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{
		pool: pool,
		lister: query.Lister[Comment]{
			Schema:  Schema,
			Columns: commentColumns,
			Scan:    scanComment,
			Loaders: map[string]query.Loader[Comment]{
				"author": loadAuthors,
			},
		},
	}
}

func scanComment(row pgx.CollectableRow) (Comment, error) {
	var (
		c    Comment
		kind string
	)
	err := row.Scan(&c.ID, &c.UserID, &kind, &c.Commentable.ID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	c.Commentable.Kind = shared.ResourceKind(kind)
	return c, err
}

func loadAuthors(ctx context.Context, conn db.DBTX, items []Comment) error {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].UserID
	}
	authors, err := users.LoadSummaries(ctx, conn, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if a, ok := authors[items[i].UserID]; ok {
			items[i].Author = &a
		}
	}
	return nil
}

// List returns a filtered page of comments.
func (r *PGRepository) List(ctx context.Context, ix query.Index) (query.Page[Comment], error) {
	return r.lister.List(ctx, r.pool, ix)
}

// Get fetches a comment with its author.
func (r *PGRepository) Get(ctx context.Context, id int64) (Comment, error) {
	return r.lister.Get(ctx, r.pool, id, "author")
}

// Create inserts a comment.
func (r *PGRepository) Create(ctx context.Context, comment Comment) (Comment, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO comments (user_id, commentable_type, commentable_id, body)
VALUES ($1, $2, $3, $4)
RETURNING id`, comment.UserID, string(comment.Commentable.Kind), comment.Commentable.ID, comment.Body,
	).Scan(&id)
	if err != nil {
		return Comment{}, err
	}
	return r.Get(ctx, id)
}

// UpdateBody replaces the comment text.
func (r *PGRepository) UpdateBody(ctx context.Context, id int64, body string) (Comment, error) {
	var updated int64
	err := r.pool.QueryRow(ctx,
		`UPDATE comments SET body = $1, updated_at = now() WHERE id = $2 RETURNING id`,
		body, id).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, shared.ErrNotFound
		}
		return Comment{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes a comment.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
