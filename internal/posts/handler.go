package posts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Sanilblank/blog-api/internal/platform/httpx"
	"github.com/Sanilblank/blog-api/internal/policy"
	"github.com/Sanilblank/blog-api/internal/query"
	"github.com/Sanilblank/blog-api/internal/rbac"
)

// Handler manages post endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    *policy.Gate
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *policy.Gate, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, rbac: rbac}
}

// MountRoutes registers post routes. Reads are public. nested registers
// additional routes below /{post}, such as comments.
func (h *Handler) MountRoutes(r chi.Router, nested ...func(chi.Router)) {
	r.Get("/", h.index)
	r.With(h.rbac.RequireAuth).Post("/", h.store)
	r.Route("/{post}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Group(func(r chi.Router) {
			r.Use(h.rbac.RequireAuth)
			r.Put("/", h.update)
			r.Patch("/", h.update)
			r.Delete("/", h.destroy)
		})
		for _, mount := range nested {
			mount(r)
		}
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := httpx.QueryPage(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	category, err := httpx.QueryInt(r, "category")
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
		Page:     page,
		PerPage:  perPage,
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Category: category,
		Tags:     httpx.QueryList(r, "tags"),
		Author:   author,
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.Index(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Paginated(w, "Posts fetched successfully", result.Items, query.NewMeta(result, r.URL))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	post, ok := h.Load(w, r)
	if !ok {
		return
	}
	httpx.Success(w, http.StatusOK, "Post retrieved successfully.", post)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.gate.Check("posts.create", h.gate.Posts.Create(actor)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	post, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusCreated, "Post created successfully", post)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	post, ok := h.Load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("posts.update", h.gate.Posts.Update(actor, post)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.service.Update(r.Context(), post, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "Post updated successfully", updated)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	post, ok := h.Load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("posts.delete", h.gate.Posts.Delete(actor, post)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), post); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "Post deleted successfully", nil)
}

// Load resolves the {post} route parameter, writing 404 when it does not exist.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) (Post, bool) {
	id, err := httpx.URLParamID(r, "post")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return Post{}, false
	}
	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return Post{}, false
	}
	return post, true
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
