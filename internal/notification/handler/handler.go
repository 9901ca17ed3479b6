// Package handler exposes the notification inbox endpoints. Users only see
// their own inbox; the email comes from the authenticated context.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"healthstack/internal/notification/models"
	"healthstack/internal/platform/metrics"
	"healthstack/internal/platform/middleware"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/httputil"
	"healthstack/pkg/requestcontext"
)

// Service defines the notification operations the handler needs.
type Service interface {
	List(ctx context.Context, userEmail string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userEmail string, id uuid.UUID) error
}

// Handler handles /api/notifications endpoints.
type Handler struct {
	logger        *slog.Logger
	notifications Service
	metrics       *metrics.Metrics
	jwtValidator  middleware.JWTValidator
}

// New creates the notification Handler.
func New(notifications Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, notifications: notifications, metrics: m, jwtValidator: jwtValidator}
}

// Register attaches the notification routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(nr chi.Router) {
		nr.Use(middleware.Recovery(h.logger))
		nr.Use(middleware.RequestID)
		nr.Use(middleware.RequestTime)
		nr.Use(middleware.Logger(h.logger))
		nr.Use(middleware.Timeout(15 * time.Second))
		nr.Use(middleware.ContentTypeJSON)
		nr.Use(middleware.Latency(h.metrics))
		nr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		nr.Get("/api/notifications", h.handleList)
		nr.Post("/api/notifications/{id}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context(), requestcontext.Identity(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "success",
		"data":    notifications,
	})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid notification id"))
		return
	}
	if err := h.notifications.MarkRead(r.Context(), requestcontext.Identity(r.Context()), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}
