package engagement

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pressroom/pressroom/internal/auth"
	"github.com/pressroom/pressroom/internal/shared"
)

// IdentityDirectory resolves the display name snapshotted into comments.
type IdentityDirectory interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
}

// Handler wires HTTP endpoints for engagement operations.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	directory  IdentityDirectory
	middleware *auth.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, directory IdentityDirectory, mw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, directory: directory, middleware: mw}
}

// MountRoutes registers engagement routes; all of them require an identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(h.middleware.RequireAuth)
		gr.Put("/{id}/like", h.handleToggleLike)
		gr.Post("/{id}/comment", h.handleAddComment)
	})
}

func (h *Handler) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	claims := shared.ClaimsFromContext(r.Context())
	likes, err := h.service.ToggleLike(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, likes)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	claims := shared.ClaimsFromContext(r.Context())
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, shared.NewValidationError("body", "invalid json"))
		return
	}

	// Snapshot the display name as it reads right now; the stored comment
	// keeps it even if the profile is renamed later.
	name := ""
	if user, err := h.directory.FindByID(r.Context(), claims.UserID); err == nil {
		name = user.Name
	} else if h.logger != nil {
		h.logger.Warn("resolve comment author", slog.String("user", claims.UserID), slog.Any("error", err))
	}

	comments, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), claims.UserID, name, req.Text)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, comments)
}
