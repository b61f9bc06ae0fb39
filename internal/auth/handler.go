package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/pressroom/pressroom/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	issuer     *TokenIssuer
	middleware *Middleware
	validator  *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, issuer *TokenIssuer, mw *Middleware) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		issuer:     issuer,
		middleware: mw,
		validator:  validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. Credential
// endpoints carry a tighter rate limit than the global stack.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/register", h.handleRegister)
		gr.Post("/login", h.handleLogin)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(h.middleware.RequireAuth)
		gr.Put("/profile", h.handleUpdateProfile)
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, shared.NewValidationError("body", "invalid json"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, validationError(err))
		return
	}
	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	h.respondSession(w, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, shared.NewValidationError("body", "invalid json"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, validationError(err))
		return
	}
	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	h.respondSession(w, user)
}

type profileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := shared.ClaimsFromContext(r.Context())
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, shared.NewValidationError("body", "invalid json"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, validationError(err))
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), claims.UserID, ProfileUpdate{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, sessionResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
}

func (h *Handler) respondSession(w http.ResponseWriter, user *User) {
	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, sessionResponse{
		Token: token,
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	})
}

func validationError(err error) error {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		return shared.NewValidationError(fieldErrs[0].Field(), "failed on "+fieldErrs[0].Tag())
	}
	return shared.NewValidationError("body", "invalid payload")
}
