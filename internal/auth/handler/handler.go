// Package handler exposes the public registration and login endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthstack/internal/auth/models"
	"healthstack/internal/platform/metrics"
	"healthstack/internal/platform/middleware"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/httputil"
	"healthstack/pkg/requestcontext"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// Handler handles /api/register and /api/login. These routes are public:
// no RequireAuth in the chain.
type Handler struct {
	logger  *slog.Logger
	auth    Service
	metrics *metrics.Metrics
}

// New creates the auth Handler.
func New(auth Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, auth: auth, metrics: m}
}

// Register attaches the auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(ar chi.Router) {
		ar.Use(middleware.Recovery(h.logger))
		ar.Use(middleware.RequestID)
		ar.Use(middleware.RequestTime)
		ar.Use(middleware.Logger(h.logger))
		ar.Use(middleware.Timeout(10 * time.Second))
		ar.Use(middleware.ContentTypeJSON)
		ar.Use(middleware.Latency(h.metrics))

		ar.Post("/api/register", h.handleRegister)
		ar.Post("/api/login", h.handleLogin)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.auth.Register(r.Context(), req); err != nil {
		h.logFailure(r, "register", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Registration successful! You can now login.",
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.logFailure(r, "login", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) logFailure(r *http.Request, op string, err error) {
	code := dErrors.GetCode(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), "auth request failed",
			"op", op,
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(r.Context(), "auth request rejected",
		"op", op,
		"code", string(code),
		"request_id", requestcontext.RequestID(r.Context()),
	)
}
