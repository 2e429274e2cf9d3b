package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Sanilblank/blog-api/internal/platform/httpx"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// Authenticate resolves the bearer token into an actor on the request
// context. Requests without a token continue as guests; a token that does
// not resolve is rejected with 401.
func Authenticate(logger *slog.Logger, service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, actor, err := service.Resolve(r.Context(), token)
			if err != nil {
				httpx.RespondError(w, logger, err)
				return
			}
			ctx := rbac.ContextWithActor(r.Context(), actor)
			ctx = shared.ContextWithTokenID(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
