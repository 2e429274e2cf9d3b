package users

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

// Handler manages user endpoints.
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

// MountRoutes registers user routes. Every route requires authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuth)
		r.Get("/", h.index)
		r.Post("/", h.store)
		r.Get("/{user}", h.show)
		r.Put("/{user}", h.update)
		r.Patch("/{user}", h.update)
		r.Delete("/{user}", h.destroy)
	})
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.gate.Check("users.viewAll", h.gate.Users.ViewAll(actor)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	page, perPage, err := httpx.QueryPage(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	req := ListRequest{
		Page:    page,
		PerPage: perPage,
		Search:  strings.TrimSpace(r.URL.Query().Get("search")),
		Roles:   httpx.QueryList(r, "roles"),
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
	httpx.Paginated(w, "Users fetched successfully.", result.Items, query.NewMeta(result, r.URL))
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.gate.Check("users.create", h.gate.Users.Create(actor)); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Failure(w, http.StatusBadRequest, "Malformed JSON body.")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	user, err := h.service.Store(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusCreated, "User created successfully.", user)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	target, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("users.show", h.gate.Users.Show(actor, target.Actor())); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "User retrieved successfully.", target)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	target, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("users.update", h.gate.Users.Update(actor, target.Actor())); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Failure(w, http.StatusBadRequest, "Malformed JSON body.")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	user, err := h.service.Update(r.Context(), target.ID, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "User updated successfully.", user)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	target, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.gate.Check("users.delete", h.gate.Users.Delete(actor, target.Actor())); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Destroy(r.Context(), target.ID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Success(w, http.StatusOK, "User deleted successfully.", nil)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (User, bool) {
	id, err := httpx.URLParamID(r, "user")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return User{}, false
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return User{}, false
	}
	return user, true
}
