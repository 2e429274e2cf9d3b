package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Sanilblank/blog-api/internal/auth"
	"github.com/Sanilblank/blog-api/internal/categories"
	"github.com/Sanilblank/blog-api/internal/comments"
	"github.com/Sanilblank/blog-api/internal/observability"
	"github.com/Sanilblank/blog-api/internal/platform/httpx"
	"github.com/Sanilblank/blog-api/internal/posts"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/tags"
	"github.com/Sanilblank/blog-api/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	PostsHandler      *posts.Handler
	CommentsHandler   *comments.Handler
	CategoriesHandler *categories.Handler
	TagsHandler       *tags.Handler
	RolesHandler      *rbac.RolesHandler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	mw := MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}
	if params.AuthService != nil {
		mw.Authenticate = auth.Authenticate(params.Logger, params.AuthService)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		for _, m := range MiddlewareStack(mw) {
			r.Use(m)
		}
		r.Use(chimw.Logger)

		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.PostsHandler != nil {
			r.Route("/posts", func(r chi.Router) {
				var nested []func(chi.Router)
				if params.CommentsHandler != nil {
					nested = append(nested, params.CommentsHandler.MountRoutes)
				}
				params.PostsHandler.MountRoutes(r, nested...)
			})
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.TagsHandler != nil {
			r.Route("/tags", params.TagsHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Failure(w, http.StatusNotFound, "Resource not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Failure(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r
}
