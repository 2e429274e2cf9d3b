package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sanilblank/blog-api/internal/auth"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
	"github.com/Sanilblank/blog-api/internal/users"
	_ "github.com/Sanilblank/blog-api/testing"
)

type stubAccounts struct {
	byEmail map[string]users.User
	stored  []users.CreateRequest
}

func (s *stubAccounts) Store(_ context.Context, req users.CreateRequest) (users.User, error) {
	if _, ok := s.byEmail[req.Email]; ok {
		return users.User{}, shared.NewValidationError("email", "The email has already been taken.")
	}
	s.stored = append(s.stored, req)
	u := users.User{ID: int64(len(s.byEmail) + 10), Name: req.Name, Email: req.Email, Roles: []rbac.RoleName{rbac.RoleName(req.Role)}}
	s.byEmail[req.Email] = u
	return u, nil
}

func (s *stubAccounts) FindByEmail(_ context.Context, email string) (users.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

type stubActors map[int64]rbac.Actor

func (s stubActors) LoadActor(_ context.Context, id int64) (rbac.Actor, error) {
	a, ok := s[id]
	if !ok {
		return rbac.Actor{}, shared.ErrNotFound
	}
	return a, nil
}

type fixture struct {
	redis    *miniredis.Miniredis
	tokens   *auth.TokenStore
	accounts *stubAccounts
	service  *auth.Service
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts := &stubAccounts{byEmail: map[string]users.User{
		"ann@blog.test": {ID: 3, Email: "ann@blog.test", PasswordHash: string(hash), Roles: []rbac.RoleName{rbac.RoleAuthor}},
	}}
	actors := stubActors{3: {ID: 3, Roles: []rbac.RoleName{rbac.RoleAuthor}}}

	tokens := auth.NewTokenStore(client, time.Hour)
	service := auth.NewService(accounts, tokens, actors)
	mw := rbac.Middleware{Resolver: rbac.NewResolver(rbac.DefaultRegistry())}
	handler := auth.NewHandler(nil, service, mw)

	r := chi.NewRouter()
	r.Use(auth.Authenticate(nil, service))
	handler.MountRoutes(r)
	r.With(mw.RequireAuth).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		actor, _ := rbac.ActorFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{"id": actor.ID, "token": shared.TokenIDFromContext(r.Context())})
	})

	return &fixture{redis: mr, tokens: tokens, accounts: accounts, service: service, router: r}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	var env map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func TestTokenStoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(ctx, 3)
	require.NoError(t, err)
	id, secret, ok := strings.Cut(token, "|")
	require.True(t, ok)
	require.NotEmpty(t, secret)

	stored, err := f.redis.Get("token:" + id)
	require.NoError(t, err)
	assert.NotContains(t, stored, secret)
	assert.Equal(t, time.Hour, f.redis.TTL("token:"+id))

	gotID, userID, err := f.tokens.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, int64(3), userID)

	for _, bad := range []string{"", "nope", id + "|wrong", "not-a-uuid|" + secret, id + "|"} {
		_, _, err := f.tokens.Lookup(ctx, bad)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated, bad)
	}

	require.NoError(t, f.tokens.Revoke(ctx, id))
	_, _, err = f.tokens.Lookup(ctx, token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	assert.NoError(t, f.tokens.Revoke(ctx, id))
}

func TestTokenExpires(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.Issue(context.Background(), 3)
	require.NoError(t, err)

	f.redis.FastForward(2 * time.Hour)
	_, _, err = f.tokens.Lookup(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rr, env := f.do(t, http.MethodPost, "/login", "", `{"email":"ann@blog.test","password":"wrongpass"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, map[string]any{"email": []any{"Invalid credentials"}}, env["errors"])

	rr, _ = f.do(t, http.MethodPost, "/login", "", `{"email":"ghost@blog.test","password":"password123"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, _ = f.do(t, http.MethodPost, "/login", "", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, env = f.do(t, http.MethodPost, "/login", "", `{"email":"ann@blog.test","password":"password123"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Logged in successfully!", env["message"])
	data := env["data"].(map[string]any)
	token := data["token"].(string)
	assert.NotContains(t, data["user"], "password_hash")

	rr, env = f.do(t, http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 3, env["id"])
}

func TestRegisterAlwaysCreatesAuthor(t *testing.T) {
	f := newFixture(t)
	body := `{"name":"Cara","email":"cara@blog.test","password":"password123","password_confirmation":"password123","role":"admin"}`

	rr, env := f.do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Author registered successfully!", env["message"])
	require.Len(t, f.accounts.stored, 1)
	assert.Equal(t, "author", f.accounts.stored[0].Role)

	rr, env = f.do(t, http.MethodPost, "/register", "", `{"name":"Dan","email":"dan@blog.test","password":"password123","password_confirmation":"different"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, env["errors"], "password_confirmation")
}

func TestLogoutRevokesCurrentToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.tokens.Issue(ctx, 3)
	require.NoError(t, err)
	second, err := f.tokens.Issue(ctx, 3)
	require.NoError(t, err)

	rr, _ := f.do(t, http.MethodPost, "/logout", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, env := f.do(t, http.MethodPost, "/logout", first, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Logged out successfully!", env["message"])

	rr, _ = f.do(t, http.MethodGet, "/me", first, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr, _ = f.do(t, http.MethodGet, "/me", second, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthenticateRejectsUnknownToken(t *testing.T) {
	f := newFixture(t)

	rr, env := f.do(t, http.MethodGet, "/me", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unauthenticated.", env["message"])

	orphan, err := f.tokens.Issue(context.Background(), 77)
	require.NoError(t, err)
	rr, _ = f.do(t, http.MethodGet, "/me", orphan, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	id, _, _ := strings.Cut(orphan, "|")
	assert.False(t, f.redis.Exists("token:"+id))
}
