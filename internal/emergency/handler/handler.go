// Package handler exposes the emergency endpoints: contact registry
// management, presence reporting, and the SOS trigger.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthstack/internal/platform/metrics"
	"healthstack/internal/platform/middleware"
	presencemodels "healthstack/internal/presence/models"
	sosmodels "healthstack/internal/sos/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/httputil"
	"healthstack/pkg/requestcontext"
)

// ContactService defines the contact registry operations the handler needs.
type ContactService interface {
	GetContacts(ctx context.Context, patientIdentity string) ([]string, error)
	AddContact(ctx context.Context, patientIdentity, contactIdentity string) ([]string, error)
	RemoveContact(ctx context.Context, patientIdentity, contactIdentity string) ([]string, error)
}

// PresenceService defines the presence operations the handler needs.
type PresenceService interface {
	ReportLocation(ctx context.Context, identity string, location presencemodels.Location) error
}

// SOSService defines the dispatch operation the handler needs.
type SOSService interface {
	Dispatch(ctx context.Context, req sosmodels.DispatchRequest) (*sosmodels.DispatchResult, error)
}

// Handler handles /api/emergency endpoints.
type Handler struct {
	logger       *slog.Logger
	contacts     ContactService
	presence     PresenceService
	sos          SOSService
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates the emergency Handler.
func New(contacts ContactService, presence PresenceService, sos SOSService, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		contacts:     contacts,
		presence:     presence,
		sos:          sos,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register attaches the emergency routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(er chi.Router) {
		er.Use(middleware.Recovery(h.logger))
		er.Use(middleware.RequestID)
		er.Use(middleware.RequestTime)
		er.Use(middleware.Logger(h.logger))
		er.Use(middleware.Timeout(30 * time.Second))
		er.Use(middleware.ContentTypeJSON)
		er.Use(middleware.Latency(h.metrics))
		er.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		er.Get("/api/emergency", h.handleGetContacts)
		er.Post("/api/emergency", h.handleAddContact)
		er.Delete("/api/emergency", h.handleRemoveContact)
		er.Post("/api/emergency/location", h.handleReportLocation)
		er.Post("/api/emergency/sos", h.handleSOS)
	})
}

type contactRequest struct {
	PatientEmail string `json:"patientEmail"`
	Email        string `json:"email"`
}

type locationPayload struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type reportLocationRequest struct {
	Email    string           `json:"email"`
	Location *locationPayload `json:"location"`
}

type sosRequest struct {
	PatientEmail string           `json:"patientEmail"`
	PatientName  string           `json:"patientName"`
	Location     *locationPayload `json:"location"`
}

func (h *Handler) handleGetContacts(w http.ResponseWriter, r *http.Request) {
	patientEmail := r.URL.Query().Get("patientEmail")
	if patientEmail == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "patientEmail query required"))
		return
	}

	contacts, err := h.contacts.GetContacts(r.Context(), patientEmail)
	if err != nil {
		h.writeServiceError(w, r, "fetch contacts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *Handler) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	contacts, err := h.contacts.AddContact(r.Context(), req.PatientEmail, req.Email)
	if err != nil {
		h.writeServiceError(w, r, "add contact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Contact added",
		"contacts": contacts,
	})
}

func (h *Handler) handleRemoveContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	contacts, err := h.contacts.RemoveContact(r.Context(), req.PatientEmail, req.Email)
	if err != nil {
		h.writeServiceError(w, r, "remove contact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Contact removed",
		"contacts": contacts,
	})
}

func (h *Handler) handleReportLocation(w http.ResponseWriter, r *http.Request) {
	var req reportLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Email == "" || req.Location == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "email and numeric location required"))
		return
	}

	location, err := presencemodels.NewLocation(req.Location.Lat, req.Location.Lng)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.presence.ReportLocation(r.Context(), req.Email, location); err != nil {
		h.writeServiceError(w, r, "report location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Location saved"})
}

func (h *Handler) handleSOS(w http.ResponseWriter, r *http.Request) {
	var req sosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.PatientEmail == "" || req.Location == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "patientEmail and numeric location required"))
		return
	}

	location, err := presencemodels.NewLocation(req.Location.Lat, req.Location.Lng)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.sos.Dispatch(r.Context(), sosmodels.DispatchRequest{
		TriggeringIdentity: req.PatientEmail,
		DisplayName:        req.PatientName,
		Location:           location,
	})
	if err != nil {
		h.writeServiceError(w, r, "sos dispatch", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "SOS notifications sent",
		"notified": result.Notified,
	})
}

// writeServiceError logs unexpected failures and writes the coded response.
// Structural outcomes (validation, not found, no contacts, no responders)
// pass through at warn level so operators can tell them apart from faults.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := dErrors.GetCode(err)
	logArgs := []any{
		"op", op,
		"code", string(code),
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err.Error(),
	}
	switch code {
	case dErrors.CodeInternal, dErrors.CodeDispatchFailed:
		h.logger.ErrorContext(r.Context(), "emergency request failed", logArgs...)
	default:
		h.logger.WarnContext(r.Context(), "emergency request rejected", logArgs...)
	}
	httputil.WriteError(w, err)
}
