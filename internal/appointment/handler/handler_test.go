package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"healthstack/internal/appointment/service"
	"healthstack/internal/appointment/store"
	authservice "healthstack/internal/auth/service"
)

type appointmentFixture struct {
	router chi.Router
	tokens *authservice.TokenManager
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	noNotify := func(context.Context, string, string, string) error { return nil }
	svc, err := service.New(store.NewMemory(), noNotify, logger)
	if err != nil {
		t.Fatalf("appointment service: %v", err)
	}

	tokens := authservice.NewTokenManager("test-key", time.Hour)
	router := chi.NewRouter()
	New(svc, logger, nil, tokens).Register(router)
	return &appointmentFixture{router: router, tokens: tokens}
}

func (f *appointmentFixture) bearer(t *testing.T, email, role string) string {
	t.Helper()
	token, err := f.tokens.Issue("user-1", email, role, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func (f *appointmentFixture) do(t *testing.T, method, target, auth string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *appointmentFixture) book(t *testing.T, auth string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/appointments", auth, map[string]string{
		"patientEmail": "pat@example.com",
		"doctorEmail":  "doc@example.com",
		"date":         "2026-03-20",
		"time":         "09:30",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("booking failed: %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode booking response: %v", err)
	}
	return resp.AppointmentID
}

func TestStatusUpdateRequiresDoctorRole(t *testing.T) {
	f := newAppointmentFixture(t)
	patient := f.bearer(t, "pat@example.com", "patient")
	doctor := f.bearer(t, "doc@example.com", "doctor")

	id := f.book(t, patient)

	rec := f.do(t, http.MethodPut, "/api/appointments/"+id, patient,
		map[string]string{"status": "Confirmed"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for patient status update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPut, "/api/appointments/"+id, doctor,
		map[string]string{"status": "Confirmed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for doctor status update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/appointments?patientEmail=pat@example.com", patient, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}
	var listResp struct {
		Data []struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Data) != 1 || listResp.Data[0].Status != "Confirmed" {
		t.Fatalf("unexpected list after confirm: %+v", listResp.Data)
	}
}

func TestCancelStaysOpenToPatients(t *testing.T) {
	f := newAppointmentFixture(t)
	patient := f.bearer(t, "pat@example.com", "patient")

	id := f.book(t, patient)

	rec := f.do(t, http.MethodDelete, "/api/appointments/"+id, patient, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 cancelling own appointment, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAppointmentsRejectMissingToken(t *testing.T) {
	f := newAppointmentFixture(t)

	rec := f.do(t, http.MethodGet, "/api/appointments", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
