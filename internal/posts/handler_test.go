package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanilblank/blog-api/internal/filter"
	"github.com/Sanilblank/blog-api/internal/policy"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

type mockRepo struct {
	posts      map[int64]Post
	categories map[int64]bool
	tags       map[int64]bool
	nextID     int64
	lastIndex  query.Index
	synced     map[int64][]int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		posts: map[int64]Post{
			1: {ID: 1, UserID: 42, CategoryID: 1, Title: "Owned", Body: "b"},
		},
		categories: map[int64]bool{1: true},
		tags:       map[int64]bool{1: true, 2: true},
		nextID:     2,
		synced:     map[int64][]int64{},
	}
}

func (m *mockRepo) List(_ context.Context, ix query.Index) (query.Page[Post], error) {
	m.lastIndex = ix
	items := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		items = append(items, p)
	}
	return query.Page[Post]{Items: items, Total: len(items), Page: ix.Page.Page, PerPage: ix.Page.PerPage}, nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return Post{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) CategoryExists(_ context.Context, id int64) (bool, error) {
	return m.categories[id], nil
}

func (m *mockRepo) MissingTags(_ context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !m.tags[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (m *mockRepo) Create(_ context.Context, post Post, tagIDs []int64) (Post, error) {
	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = post
	m.synced[post.ID] = tagIDs
	return post, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, post Post, tagIDs []int64) (Post, error) {
	existing := m.posts[id]
	existing.Title, existing.Body, existing.CategoryID = post.Title, post.Body, post.CategoryID
	m.posts[id] = existing
	m.synced[id] = tagIDs
	return existing, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	delete(m.posts, id)
	return nil
}

var actors = map[string]rbac.Actor{
	"admin":    {ID: 1, Roles: []rbac.RoleName{rbac.RoleAdmin}},
	"owner":    {ID: 42, Roles: []rbac.RoleName{rbac.RoleAuthor}},
	"stranger": {ID: 99, Roles: []rbac.RoleName{rbac.RoleAuthor}},
}

func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, ok := actors[r.Header.Get("X-Actor")]; ok {
			r = r.WithContext(rbac.ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func newRouter(repo Repository) http.Handler {
	resolver := rbac.NewResolver(rbac.DefaultRegistry())
	h := NewHandler(nil, NewService(repo, 10), policy.NewGate(resolver, nil), rbac.Middleware{Resolver: resolver})
	r := chi.NewRouter()
	r.Use(withActor)
	r.Route("/posts", func(r chi.Router) { h.MountRoutes(r) })
	return r
}

func do(t *testing.T, h http.Handler, method, path, actor, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func TestIndexIsPublicAndPassesFilters(t *testing.T) {
	repo := newMockRepo()
	rr, env := do(t, newRouter(repo), http.MethodGet, "/posts?search=go&tags=1,2&category=1&per_page=5", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Posts fetched successfully", env["message"])
	assert.Equal(t, "go", repo.lastIndex.Filters["search"])
	assert.Equal(t, []string{"1", "2"}, repo.lastIndex.Filters["tags"])
	assert.Equal(t, int64(1), repo.lastIndex.Filters["category"])
	assert.Equal(t, Relations, repo.lastIndex.With)
	assert.Equal(t, query.PageRequest{Page: 1, PerPage: 5}, repo.lastIndex.Page)

	meta := env["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["total"])
}

func TestIndexRejectsBadQuery(t *testing.T) {
	rr, env := do(t, newRouter(newMockRepo()), http.MethodGet, "/posts?tags=a&per_page=500", "", "")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs := env["errors"].(map[string]any)
	assert.Contains(t, errs, "per_page")
	assert.Contains(t, errs, "tags[0]")
}

func TestIndexRejectsUnusableTagIDs(t *testing.T) {
	for _, raw := range []string{"0", "00", "-1", "1.5"} {
		rr, env := do(t, newRouter(newMockRepo()), http.MethodGet, "/posts?tags=2,"+raw, "", "")
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, raw)
		assert.Contains(t, env["errors"], "tags[1]", raw)
	}
}

func TestTagsFilterSkipsWhenNoIDsRemain(t *testing.T) {
	l := query.Lister[Post]{Schema: Schema, Columns: "posts.id"}
	_, count, err := l.Build(query.Index{Filters: filter.Values{"tags": []any{int64(0)}}, Definition: Filters})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE TRUE", count.SQL)
}

func TestShowMissingPost(t *testing.T) {
	rr, _ := do(t, newRouter(newMockRepo()), http.MethodGet, "/posts/77", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStoreRequiresAuthentication(t *testing.T) {
	rr, env := do(t, newRouter(newMockRepo()), http.MethodPost, "/posts", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unauthenticated.", env["message"])
}

func TestStoreSetsOwnerFromActor(t *testing.T) {
	repo := newMockRepo()
	body := `{"title":" Hello ","body":"text","category_id":1,"tags":[2,1,2],"user_id":7}`
	rr, env := do(t, newRouter(repo), http.MethodPost, "/posts", "stranger", body)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	data := env["data"].(map[string]any)
	assert.EqualValues(t, 99, data["user_id"])
	assert.Equal(t, "Hello", data["title"])
	assert.Equal(t, []int64{1, 2}, repo.synced[2])
}

func TestStoreValidatesReferences(t *testing.T) {
	body := `{"title":"x","body":"y","category_id":5,"tags":[1,9]}`
	rr, env := do(t, newRouter(newMockRepo()), http.MethodPost, "/posts", "owner", body)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs := env["errors"].(map[string]any)
	assert.Contains(t, errs, "category_id")
	assert.Contains(t, errs, "tags.1")
}

func TestUpdateAuthorization(t *testing.T) {
	body := `{"title":"New","body":"y","category_id":1,"tags":[1]}`
	cases := []struct {
		actor string
		want  int
	}{
		{"stranger", http.StatusForbidden},
		{"owner", http.StatusOK},
		{"admin", http.StatusOK},
		{"", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.actor, func(t *testing.T) {
			repo := newMockRepo()
			rr, _ := do(t, newRouter(repo), http.MethodPut, "/posts/1", tc.actor, body)
			assert.Equal(t, tc.want, rr.Code)
			if tc.want != http.StatusOK {
				assert.Equal(t, "Owned", repo.posts[1].Title)
			}
		})
	}
}

func TestForbiddenBeatsValidation(t *testing.T) {
	rr, _ := do(t, newRouter(newMockRepo()), http.MethodPatch, "/posts/1", "stranger", `{}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDestroy(t *testing.T) {
	repo := newMockRepo()
	h := newRouter(repo)

	rr, _ := do(t, h, http.MethodDelete, "/posts/1", "stranger", "")
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, repo.posts, int64(1))

	rr, env := do(t, h, http.MethodDelete, "/posts/1", "owner", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Post deleted successfully", env["message"])
	assert.False(t, slices.Contains(keys(repo.posts), 1))
}

func keys(m map[int64]Post) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
