// Package service implements appointment booking and lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"healthstack/internal/appointment/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/email"
	"healthstack/pkg/platform/audit"
	"healthstack/pkg/platform/sentinel"
	"healthstack/pkg/requestcontext"
)

// Store is the persistence boundary for appointments.
type Store interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, patientEmail string) ([]*models.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditEmitter records appointment lifecycle events.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns booking policy: every booking starts Pending, and both booking
// and status changes notify the counterparty.
type Service struct {
	store    Store
	notifier NotifyFunc
	logger   *slog.Logger
	auditor  AuditEmitter
}

// NotifyFunc is the notification hook. Failures are logged, not returned;
// a missed notice must not fail the booking.
type NotifyFunc func(ctx context.Context, userEmail, title, message string) error

// Option configures optional collaborators.
type Option func(*Service)

// WithAuditEmitter attaches the audit publisher.
func WithAuditEmitter(a AuditEmitter) Option {
	return func(s *Service) { s.auditor = a }
}

// New constructs the appointment service.
func New(store Store, notify NotifyFunc, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("appointment store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, notifier: notify, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Book creates an appointment in Pending status and notifies the doctor.
func (s *Service) Book(ctx context.Context, req models.BookRequest) (*models.Appointment, error) {
	req.PatientEmail = strings.TrimSpace(req.PatientEmail)
	req.DoctorEmail = strings.TrimSpace(req.DoctorEmail)
	if req.PatientEmail == "" || req.DoctorEmail == "" || req.Date == "" || req.Time == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "patientEmail, doctorEmail, date and time are required")
	}

	patientName := req.PatientName
	if patientName == "" {
		patientName = email.DisplayName(req.PatientEmail)
	}
	doctorName := req.DoctorName
	if doctorName == "" {
		doctorName = email.DisplayName(req.DoctorEmail)
	}

	appointment := &models.Appointment{
		ID:           uuid.New(),
		PatientEmail: req.PatientEmail,
		PatientName:  patientName,
		DoctorEmail:  req.DoctorEmail,
		DoctorName:   doctorName,
		Date:         req.Date,
		Time:         req.Time,
		Reason:       req.Reason,
		Status:       models.StatusPending,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, appointment); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to book appointment")
	}

	s.notify(ctx, appointment.DoctorEmail,
		"New Appointment Booked",
		fmt.Sprintf("You have a new appointment with %s.", appointment.PatientName))
	s.audit(ctx, appointment.PatientEmail, audit.EventAppointmentBooked,
		fmt.Sprintf("appointment %s with %s on %s %s", appointment.ID, appointment.DoctorEmail, appointment.Date, appointment.Time))

	return appointment, nil
}

// List returns appointments newest first, filtered by patient when given.
func (s *Service) List(ctx context.Context, patientEmail string) ([]*models.Appointment, error) {
	appointments, err := s.store.List(ctx, strings.TrimSpace(patientEmail))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list appointments")
	}
	return appointments, nil
}

// UpdateStatus moves an appointment to the given status and notifies the
// patient.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Appointment, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "new status is required")
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "appointment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update appointment")
	}

	appointment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load appointment")
	}

	s.notify(ctx, appointment.PatientEmail,
		"Appointment Status Updated",
		fmt.Sprintf("Your appointment with Dr. %s has been %s.", appointment.DoctorName, status))
	s.audit(ctx, appointment.PatientEmail, audit.EventAppointmentUpdated,
		fmt.Sprintf("appointment %s status %s", id, status))

	return appointment, nil
}

// Cancel deletes the appointment.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "appointment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel appointment")
	}
	s.audit(ctx, "", audit.EventAppointmentCancelled, fmt.Sprintf("appointment %s cancelled", id))
	return nil
}

func (s *Service) notify(ctx context.Context, userEmail, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier(ctx, userEmail, title, message); err != nil {
		s.logger.WarnContext(ctx, "appointment notification failed",
			"user", userEmail, "title", title, "error", err.Error())
	}
}

func (s *Service) audit(ctx context.Context, identity string, action audit.AuditEvent, detail string) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Identity:  identity,
		Action:    string(action),
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	})
}
