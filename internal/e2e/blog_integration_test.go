//go:build integration

package e2e

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Sanilblank/blog-api/internal/categories"
	"github.com/Sanilblank/blog-api/internal/comments"
	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/posts"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/tags"
	"github.com/Sanilblank/blog-api/internal/users"
	"github.com/Sanilblank/blog-api/migrations"
)

// startPostgres boots a disposable database with the schema and roles applied.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("blog_test"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := testcontainers.TerminateContainer(container, testcontainers.StopContext(cleanupCtx)); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := db.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, migrations.FS))
	// A second run must be a no-op.
	require.NoError(t, db.Migrate(ctx, pool, migrations.FS))
	require.NoError(t, rbac.NewService(pool, rbac.DefaultRegistry()).Sync(ctx))
	return pool
}

type world struct {
	users      *users.Service
	categories *categories.Service
	tags       *tags.Service
	posts      *posts.Service
	comments   *comments.Service
	rbac       *rbac.Service
}

func newWorld(pool *pgxpool.Pool) world {
	return world{
		users:      users.NewService(users.NewRepository(pool), 4, 10),
		categories: categories.NewService(categories.NewRepository(pool), 10),
		tags:       tags.NewService(tags.NewRepository(pool), 10),
		posts:      posts.NewService(posts.NewRepository(pool), 10),
		comments:   comments.NewService(comments.NewRepository(pool), 10),
		rbac:       rbac.NewService(pool, rbac.DefaultRegistry()),
	}
}

func TestBlogFlow(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	w := newWorld(pool)

	admin, err := w.users.Store(ctx, users.CreateRequest{
		Name: "Super Admin", Email: "admin@admin.com",
		Password: "password123", PasswordConfirmation: "password123", Role: "admin",
	})
	require.NoError(t, err)
	ann, err := w.users.Store(ctx, users.CreateRequest{
		Name: "Ann Writer", Email: "ann@blog.test",
		Password: "password123", PasswordConfirmation: "password123", Role: "author",
	})
	require.NoError(t, err)

	t.Run("roles filter", func(t *testing.T) {
		page, err := w.users.Index(ctx, users.ListRequest{Roles: []string{"author"}})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, ann.ID, page.Items[0].ID)
		assert.Equal(t, []rbac.RoleName{rbac.RoleAuthor}, page.Items[0].Roles)

		page, err = w.users.Index(ctx, users.ListRequest{Search: "admin"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, admin.ID, page.Items[0].ID)
	})

	sports, err := w.categories.Create(ctx, categories.SaveRequest{Name: "Sports"})
	require.NoError(t, err)
	assert.Equal(t, "sports", sports.Slug)
	politics, err := w.categories.Create(ctx, categories.SaveRequest{Name: "Politics"})
	require.NoError(t, err)

	t.Run("category search", func(t *testing.T) {
		page, err := w.categories.Index(ctx, categories.ListRequest{Search: "Sport"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Sports", page.Items[0].Name)

		_, err = w.categories.Create(ctx, categories.SaveRequest{Name: "SPORTS"})
		var verr *shared.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	golang, err := w.tags.Create(ctx, tags.SaveRequest{Name: "Go"})
	require.NoError(t, err)
	rust, err := w.tags.Create(ctx, tags.SaveRequest{Name: "Rust"})
	require.NoError(t, err)

	annActor := ann.Actor()
	first, err := w.posts.Create(ctx, annActor, posts.SaveRequest{
		Title: "Derby day", Body: "A match report", CategoryID: sports.ID, Tags: []int64{golang.ID, golang.ID, rust.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, ann.ID, first.UserID)
	assert.Len(t, first.Tags, 2)
	second, err := w.posts.Create(ctx, admin.Actor(), posts.SaveRequest{
		Title: "Budget vote", Body: "Parliament sat late", CategoryID: politics.ID, Tags: []int64{rust.ID},
	})
	require.NoError(t, err)

	t.Run("post filters", func(t *testing.T) {
		cases := []struct {
			name string
			req  posts.ListRequest
			want []int64
		}{
			{"all newest first", posts.ListRequest{}, []int64{second.ID, first.ID}},
			{"category", posts.ListRequest{Category: sports.ID}, []int64{first.ID}},
			{"author", posts.ListRequest{Author: admin.ID}, []int64{second.ID}},
			{"tag", posts.ListRequest{Tags: []string{strconv.FormatInt(golang.ID, 10)}}, []int64{first.ID}},
			{"search title", posts.ListRequest{Search: "budget"}, []int64{second.ID}},
			{"search author name", posts.ListRequest{Search: "Ann"}, []int64{first.ID}},
			{"search category name", posts.ListRequest{Search: "politic"}, []int64{second.ID}},
			{"combined", posts.ListRequest{Category: sports.ID, Author: admin.ID}, nil},
		}
		for _, tc := range cases {
			page, err := w.posts.Index(ctx, tc.req)
			require.NoError(t, err, tc.name)
			var got []int64
			for _, p := range page.Items {
				got = append(got, p.ID)
			}
			assert.Equal(t, tc.want, got, tc.name)
			assert.Equal(t, len(tc.want), page.Total, tc.name)
		}
	})

	t.Run("comments", func(t *testing.T) {
		c, err := w.comments.Create(ctx, admin.Actor(), first, comments.SaveRequest{Body: "Great read"})
		require.NoError(t, err)
		assert.Equal(t, shared.Ref{Kind: shared.KindPost, ID: first.ID}, c.Commentable)

		page, err := w.comments.Index(ctx, first, comments.ListRequest{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		require.NotNil(t, page.Items[0].Author)
		assert.Equal(t, "Super Admin", page.Items[0].Author.Name)

		page, err = w.comments.Index(ctx, second, comments.ListRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("referential rules", func(t *testing.T) {
		err := w.categories.Delete(ctx, sports.ID)
		assert.ErrorIs(t, err, shared.ErrConflict)

		require.NoError(t, w.posts.Delete(ctx, first))
		_, err = w.posts.Get(ctx, first.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		page, err := w.comments.Index(ctx, first, comments.ListRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)

		assert.NoError(t, w.categories.Delete(ctx, sports.ID))
	})

	t.Run("role assignment", func(t *testing.T) {
		require.NoError(t, w.rbac.AssignRole(ctx, ann.ID, rbac.RoleAdmin))
		actor, err := w.rbac.LoadActor(ctx, ann.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []rbac.RoleName{rbac.RoleAdmin, rbac.RoleAuthor}, actor.Roles)
	})
}
