// Package httptransport assembles the root router. Domain handlers register
// their own routes and middleware; this package adds the cross-cutting
// surface: health, metrics, and outbound email.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthstack/internal/notify"
	"healthstack/internal/platform/metrics"
	"healthstack/internal/platform/middleware"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/audit"
	"healthstack/pkg/platform/httputil"
	"healthstack/pkg/requestcontext"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports liveness of one backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthFunc adapts a plain function to HealthChecker.
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Health(ctx context.Context) error { return f(ctx) }

// AuditEmitter records outbound email sends.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Deps carries everything the root router mounts.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Messenger    notify.Messenger
	Auditor      AuditEmitter
	JWTValidator middleware.JWTValidator
	Handlers     []Registrar
	Checks       map[string]HealthChecker
}

// NewRouter builds the root handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	for _, h := range deps.Handlers {
		h.Register(r)
	}

	r.Get("/api/health", handleHealth(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(mr chi.Router) {
		mr.Use(middleware.Recovery(deps.Logger))
		mr.Use(middleware.RequestID)
		mr.Use(middleware.RequestTime)
		mr.Use(middleware.Logger(deps.Logger))
		mr.Use(middleware.Timeout(30 * time.Second))
		mr.Use(middleware.ContentTypeJSON)
		mr.Use(middleware.Latency(deps.Metrics))
		mr.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))
		mr.Post("/api/send-email", handleSendEmail(deps))
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := "ok"
		checks := make(map[string]string, len(deps.Checks))
		for name, check := range deps.Checks {
			if err := check.Health(ctx); err != nil {
				status = "degraded"
				checks[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}

		body := map[string]any{
			"status":  status,
			"message": "Server running fine",
		}
		if len(checks) > 0 {
			body["checks"] = checks
		}
		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, body)
	}
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func handleSendEmail(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
		if req.To == "" || req.Subject == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "to and subject are required"))
			return
		}

		err := deps.Messenger.Send(r.Context(), notify.Message{
			Recipients: []string{req.To},
			Subject:    req.Subject,
			Body:       req.Message,
		})
		if err != nil {
			deps.Logger.ErrorContext(r.Context(), "email send failed",
				"to", req.To, "error", err.Error())
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeDispatchFailed, "failed to send email"))
			return
		}

		if deps.Auditor != nil {
			_ = deps.Auditor.Emit(r.Context(), audit.Event{
				Identity:  requestcontext.Identity(r.Context()),
				Action:    string(audit.EventEmailSent),
				Subject:   req.To,
				RequestID: requestcontext.RequestID(r.Context()),
			})
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Email sent successfully!"})
	}
}
