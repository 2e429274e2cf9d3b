package rbac

import (
	"log/slog"
	"net/http"

	"github.com/Sanilblank/blog-api/internal/platform/httpx"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Middleware wires RBAC guards for HTTP routes. It expects the actor to be
// placed in the request context by the authentication middleware.
type Middleware struct {
	Resolver Resolver
	Logger   *slog.Logger
}

// RequireAuth rejects guests with 401.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			httpx.RespondError(w, m.Logger, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects guests with 401 and actors holding none of roles with 403.
func (m Middleware) RequireRole(roles ...RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, m.Logger, shared.ErrUnauthenticated)
				return
			}
			if !m.Resolver.HasRole(actor, roles...) {
				if m.Logger != nil {
					m.Logger.Warn("rbac role required",
						slog.Int64("user_id", actor.ID),
						slog.Any("roles", roles),
						slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, m.Logger, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
