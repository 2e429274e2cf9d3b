package comments

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sanilblank/blog-api/internal/platform/httpx"
	"github.com/Sanilblank/blog-api/internal/policy"
	"github.com/Sanilblank/blog-api/internal/posts"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/shared"
)

// PostLoader resolves the {post} route parameter.
type PostLoader interface {
	Load(w http.ResponseWriter, r *http.Request) (posts.Post, bool)
}

// Handler manages comment endpoints nested under a post.
type Handler struct {
	logger  *slog.Logger
	service *Service
	posts   PostLoader
	gate    *policy.Gate
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, posts PostLoader, gate *policy.Gate, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, posts: posts, gate: gate, rbac: rbac}
}

// MountRoutes registers /comments below a post router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", h.index)
		r.Get("/{comment}", h.show)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAuth)
			r.Post("/", h.store)
			r.Put("/{comment}", h.update)
			r.Patch("/{comment}", h.update)
			r.Delete("/{comment}", h.destroy)
		})
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	post, ok := h.posts.Load(w, r)
	if !ok {
		return
	}
	page, perPage, err := httpx.QueryPage(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	author, err := httpx.QueryInt(r, "author")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	req := ListRequest{
		Page:    page,
		PerPage: perPage,
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		Author:  author,
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.Index(r.Context(), post, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Paginated(w, "Comments fetched successfully", result.Items, query.NewMeta(result, r.URL))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	post, comment, ok := h.load(w, r)
	if !ok {
		return
	}
	if !policy.BelongsTo(comment, post) {
		httpx.RespondError(w, h.logger, shared.ErrForbidden)
		return
	}
	httpx.Success(w, http.StatusOK, "Comment retrieved successfully.", comment)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	post, ok := h.posts.Load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("comments.create", h.gate.Comments.Create(actor)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	comment, err := h.service.Create(r.Context(), actor, post, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Comment created successfully", comment)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	post, comment, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("comments.update", h.gate.Comments.Update(actor, post, comment)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), comment, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "Comment updated successfully", updated)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	post, comment, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("comments.delete", h.gate.Comments.Delete(actor, post, comment)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), comment); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "Comment deleted successfully", nil)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (posts.Post, Comment, bool) {
	post, ok := h.posts.Load(w, r)
	if !ok {
		return posts.Post{}, Comment{}, false
	}
	id, err := httpx.URLParamID(r, "comment")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return posts.Post{}, Comment{}, false
	}
	comment, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return posts.Post{}, Comment{}, false
	}
	return post, comment, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (SaveRequest, bool) {
	var req SaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Failure(w, http.StatusBadRequest, "Malformed JSON body.")
		return SaveRequest{}, false
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return SaveRequest{}, false
	}
	return req, true
}
