package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"healthstack/internal/auth/service"
	"healthstack/internal/auth/store"
)

func newAuthRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := service.NewTokenManager("test-key", time.Hour)
	svc, err := service.New(store.NewMemory(), tokens, nil, nil)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	router := chi.NewRouter()
	New(svc, logger, nil).Register(router)
	return router
}

func post(t *testing.T, router chi.Router, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLoginViaHandlers(t *testing.T) {
	router := newAuthRouter(t)

	rec := post(t, router, "/api/register", map[string]string{
		"name":     "Pat Doe",
		"email":    "pat@example.com",
		"password": "hunter2!",
		"role":     "patient",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 registering, got %d: %s", rec.Code, rec.Body.String())
	}

	var regResp struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&regResp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if regResp.Message != "Registration successful! You can now login." {
		t.Fatalf("unexpected register message %q", regResp.Message)
	}

	rec = post(t, router, "/api/login", map[string]string{
		"email":    "pat@example.com",
		"password": "hunter2!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 logging in, got %d: %s", rec.Code, rec.Body.String())
	}

	var loginResp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		Role    string `json:"role"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Token == "" || loginResp.Role != "patient" || loginResp.Name != "Pat Doe" {
		t.Fatalf("unexpected login response: %+v", loginResp)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	router := newAuthRouter(t)

	payload := map[string]string{
		"name":     "Pat Doe",
		"email":    "pat@example.com",
		"password": "hunter2!",
		"role":     "patient",
	}
	if rec := post(t, router, "/api/register", payload); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on first register, got %d", rec.Code)
	}
	rec := post(t, router, "/api/register", payload)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate register, got %d", rec.Code)
	}
}

func TestLoginFailuresMapToStatuses(t *testing.T) {
	router := newAuthRouter(t)

	if rec := post(t, router, "/api/register", map[string]string{
		"name": "Pat Doe", "email": "pat@example.com", "password": "hunter2!", "role": "patient",
	}); rec.Code != http.StatusOK {
		t.Fatalf("register failed: %d", rec.Code)
	}

	rec := post(t, router, "/api/login", map[string]string{
		"email": "ghost@example.com", "password": "whatever",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", rec.Code)
	}

	rec = post(t, router, "/api/login", map[string]string{
		"email": "pat@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}
