package posts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanilblank/blog-api/internal/categories"
	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/tags"
	"github.com/Sanilblank/blog-api/internal/users"
)

// Schema describes the posts table and the relations its filters traverse.
var Schema = query.Schema{
	Table: "posts",
	Relations: map[string]query.Relation{
		"author": {
			Table: "users",
			On:    "{inner}.id = {outer}.user_id",
		},
		"category": {
			Table: "categories",
			On:    "{inner}.id = {outer}.category_id",
		},
		"tags": {
			Table: "tags",
			Join:  "JOIN taggables {inner}_pivot ON {inner}_pivot.tag_id = {inner}.id",
			On:    "{inner}_pivot.taggable_type = 'post' AND {inner}_pivot.taggable_id = {outer}.id",
		},
	},
}

func errUnknownCategory() error {
	return shared.NewValidationError("category_id", "The selected category id is invalid.")
}

// Relations eager loaded by the post endpoints.
var Relations = []string{"author", "category", "tags"}

const postColumns = "posts.id, posts.user_id, posts.category_id, posts.title, posts.body, posts.created_at, posts.updated_at"

// Repository defines persistence operations for posts.
type Repository interface {
	List(ctx context.Context, ix query.Index) (query.Page[Post], error)
	Get(ctx context.Context, id int64) (Post, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	MissingTags(ctx context.Context, ids []int64) ([]int64, error)
	Create(ctx context.Context, post Post, tagIDs []int64) (Post, error)
	Update(ctx context.Context, id int64, post Post, tagIDs []int64) (Post, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool   *pgxpool.Pool
	lister query.Lister[Post]
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{
		pool: pool,
		lister: query.Lister[Post]{
			Schema:  Schema,
			Columns: postColumns,
			Scan:    scanPost,
			Loaders: map[string]query.Loader[Post]{
				"author":   loadAuthors,
				"category": loadCategories,
				"tags":     loadTags,
			},
		},
	}
}

func scanPost(row pgx.CollectableRow) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func loadAuthors(ctx context.Context, conn db.DBTX, items []Post) error {
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

func loadCategories(ctx context.Context, conn db.DBTX, items []Post) error {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].CategoryID
	}
	found, err := categories.LoadMany(ctx, conn, ids)
	if err != nil {
		return err
	}
	for i := range items {
		if c, ok := found[items[i].CategoryID]; ok {
			items[i].Category = &c
		}
	}
	return nil
}

func loadTags(ctx context.Context, conn db.DBTX, items []Post) error {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	found, err := tags.ForTaggables(ctx, conn, shared.KindPost, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Tags = found[items[i].ID]
		if items[i].Tags == nil {
			items[i].Tags = []tags.Tag{}
		}
	}
	return nil
}

// List returns a filtered page of posts.
func (r *PGRepository) List(ctx context.Context, ix query.Index) (query.Page[Post], error) {
	return r.lister.List(ctx, r.pool, ix)
}

// Get fetches a post with author, category and tags.
func (r *PGRepository) Get(ctx context.Context, id int64) (Post, error) {
	return r.lister.Get(ctx, r.pool, id, Relations...)
}

// CategoryExists reports whether the category exists.
func (r *PGRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return categories.Exists(ctx, r.pool, id)
}

// MissingTags returns the ids that match no tag.
func (r *PGRepository) MissingTags(ctx context.Context, ids []int64) ([]int64, error) {
	return tags.Missing(ctx, r.pool, ids)
}

// Create inserts the post and attaches tagIDs in one transaction.
func (r *PGRepository) Create(ctx context.Context, post Post, tagIDs []int64) (Post, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
INSERT INTO posts (user_id, category_id, title, body)
VALUES ($1, $2, $3, $4)
RETURNING id`, post.UserID, post.CategoryID, post.Title, post.Body,
		).Scan(&post.ID)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return errUnknownCategory()
			}
			return fmt.Errorf("insert post: %w", err)
		}
		if len(tagIDs) > 0 {
			if err := tags.Sync(ctx, tx, shared.KindPost, post.ID, tagIDs); err != nil {
				return fmt.Errorf("sync tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Post{}, err
	}
	return r.Get(ctx, post.ID)
}

// Update replaces the post fields and, when tagIDs is not empty, its tags.
func (r *PGRepository) Update(ctx context.Context, id int64, post Post, tagIDs []int64) (Post, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE posts SET category_id = $1, title = $2, body = $3, updated_at = now()
WHERE id = $4`, post.CategoryID, post.Title, post.Body, id)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return errUnknownCategory()
			}
			return fmt.Errorf("update post: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if len(tagIDs) > 0 {
			if err := tags.Sync(ctx, tx, shared.KindPost, id, tagIDs); err != nil {
				return fmt.Errorf("sync tags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Post{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes the post together with its tag links and comments.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tags.Detach(ctx, tx, shared.KindPost, id); err != nil {
			return fmt.Errorf("detach tags: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM comments WHERE commentable_type = $1 AND commentable_id = $2`,
			string(shared.KindPost), id); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
