package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Merco74/ScoutPlateform/common/httputil"
	"github.com/Merco74/ScoutPlateform/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required,max=72"`
}

type Handler struct {
	service   *Service
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator *validator.Validate
}

func NewHandler(service *Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		metrics:   m,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/logout", h.Logout)
}

// Login opens a staff session and sets the session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "password is required")
		return
	}

	token, err := h.service.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.RecordLogin(r.Context(), false)
			h.logger.WarnContext(r.Context(), "staff login refused", "device", DeviceName(r.UserAgent()))
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordLogin(r.Context(), true)
	h.logger.InfoContext(r.Context(), "staff logged in", "device", DeviceName(r.UserAgent()))
	SetAuthCookie(w, token, h.service.tokens.TTL())
	httputil.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout revokes the current session and clears the cookie
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
