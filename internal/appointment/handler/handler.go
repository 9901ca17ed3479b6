// Package handler exposes the appointment endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"healthstack/internal/appointment/models"
	"healthstack/internal/platform/metrics"
	"healthstack/internal/platform/middleware"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/httputil"
)

// Service defines the appointment operations the handler needs.
type Service interface {
	Book(ctx context.Context, req models.BookRequest) (*models.Appointment, error)
	List(ctx context.Context, patientEmail string) ([]*models.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// Handler handles /api/appointments endpoints.
type Handler struct {
	logger       *slog.Logger
	appointments Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates the appointment Handler.
func New(appointments Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, appointments: appointments, metrics: m, jwtValidator: jwtValidator}
}

// Register attaches the appointment routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(ar chi.Router) {
		ar.Use(middleware.Recovery(h.logger))
		ar.Use(middleware.RequestID)
		ar.Use(middleware.RequestTime)
		ar.Use(middleware.Logger(h.logger))
		ar.Use(middleware.Timeout(15 * time.Second))
		ar.Use(middleware.ContentTypeJSON)
		ar.Use(middleware.Latency(h.metrics))
		ar.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		ar.Post("/api/appointments", h.handleBook)
		ar.Get("/api/appointments", h.handleList)
		// Only doctors move appointments through the status lifecycle;
		// patients book and cancel.
		ar.With(middleware.RequireRole("doctor")).
			Put("/api/appointments/{id}", h.handleUpdateStatus)
		ar.Delete("/api/appointments/{id}", h.handleCancel)
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	appointment, err := h.appointments.Book(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":       "Appointment booked successfully!",
		"appointmentId": appointment.ID,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointments.List(r.Context(), r.URL.Query().Get("patientEmail"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if appointments == nil {
		appointments = []*models.Appointment{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "success",
		"data":    appointments,
	})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid appointment id"))
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if _, err := h.appointments.UpdateStatus(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Status updated successfully"})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid appointment id"))
		return
	}
	if err := h.appointments.Cancel(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled successfully"})
}
