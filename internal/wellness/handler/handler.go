// Package handler exposes the wellness logging endpoints. The patient
// identity always comes from the authenticated context, never the body.
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
	"healthstack/internal/wellness/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/httputil"
	"healthstack/pkg/requestcontext"
)

// Service defines the wellness operations the handler needs.
type Service interface {
	SaveEntry(ctx context.Context, entry models.Entry) error
	LogActivity(ctx context.Context, patientIdentity, date, name string, duration float64) (*models.Activity, error)
	List(ctx context.Context, patientIdentity string) ([]*models.Entry, []*models.Activity, error)
	Clear(ctx context.Context, patientIdentity string) error
}

// Handler handles /api/wellness, /api/activities and /api/clear.
type Handler struct {
	logger       *slog.Logger
	wellness     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates the wellness Handler.
func New(wellness Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, wellness: wellness, metrics: m, jwtValidator: jwtValidator}
}

// Register attaches the wellness routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(wr chi.Router) {
		wr.Use(middleware.Recovery(h.logger))
		wr.Use(middleware.RequestID)
		wr.Use(middleware.RequestTime)
		wr.Use(middleware.Logger(h.logger))
		wr.Use(middleware.Timeout(15 * time.Second))
		wr.Use(middleware.ContentTypeJSON)
		wr.Use(middleware.Latency(h.metrics))
		wr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		wr.Get("/api/wellness", h.handleList)
		wr.Post("/api/wellness", h.handleSaveEntry)
		wr.Post("/api/activities", h.handleLogActivity)
		wr.Delete("/api/clear", h.handleClear)
	})
}

type entryRequest struct {
	Date  string  `json:"date"`
	Water float64 `json:"water"`
	Sleep float64 `json:"sleep"`
}

type activityRequest struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Date     string  `json:"date"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity := requestcontext.Identity(r.Context())
	entries, activities, err := h.wellness.List(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.Entry{}
	}
	if activities == nil {
		activities = []*models.Activity{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "success",
		"entries":    entries,
		"activities": activities,
	})
}

func (h *Handler) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	err := h.wellness.SaveEntry(r.Context(), models.Entry{
		PatientIdentity: requestcontext.Identity(r.Context()),
		Date:            req.Date,
		WaterGlasses:    req.Water,
		SleepHours:      req.Sleep,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entry saved successfully"})
}

func (h *Handler) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	activity, err := h.wellness.LogActivity(r.Context(),
		requestcontext.Identity(r.Context()), req.Date, req.Name, req.Duration)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Activity logged successfully",
		"activity": activity,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.wellness.Clear(r.Context(), requestcontext.Identity(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "All wellness data cleared."})
}
