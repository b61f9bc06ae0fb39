package news

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pressroom/pressroom/internal/auth"
	"github.com/pressroom/pressroom/internal/shared"
)

// Handler wires HTTP endpoints for content records.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware *auth.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, middleware: mw}
}

// MountRoutes registers content routes on the provided router. Reads are
// public; the liked feed needs an identity; editorial writes need admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Group(func(gr chi.Router) {
		gr.Use(h.middleware.RequireAuth)
		gr.Get("/liked", h.handleLiked)
	})
	r.Get("/{id}", h.handleGet)
	r.Group(func(gr chi.Router) {
		gr.Use(h.middleware.RequireAdmin)
		gr.Post("/", h.handleCreate)
		gr.Put("/{id}", h.handleUpdate)
		gr.Delete("/{id}", h.handleDelete)
	})
}

type draftRequest struct {
	Title       string    `json:"title"`
	Script      string    `json:"script"`
	YoutubeLink string    `json:"youtubeLink"`
	Categories  []string  `json:"categories"`
	IsBreaking  bool      `json:"isBreaking"`
	PublishedAt time.Time `json:"publishedAt"`
}

func (r draftRequest) draft() Draft {
	return Draft{
		Title:       r.Title,
		Script:      r.Script,
		YoutubeLink: r.YoutubeLink,
		Categories:  r.Categories,
		IsBreaking:  r.IsBreaking,
		PublishedAt: r.PublishedAt,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, articles)
}

func (h *Handler) handleLiked(w http.ResponseWriter, r *http.Request) {
	claims := shared.ClaimsFromContext(r.Context())
	articles, err := h.service.ListLikedBy(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list liked articles", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, articles)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, article)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, shared.NewValidationError("body", "invalid json"))
		return
	}
	article, err := h.service.Create(r.Context(), req.draft())
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, article)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, shared.NewValidationError("body", "invalid json"))
		return
	}
	article, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.draft())
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, article)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
