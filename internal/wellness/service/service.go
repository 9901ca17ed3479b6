// Package service implements wellness logging.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthstack/internal/wellness/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/requestcontext"
)

// Store is the persistence boundary for wellness logs.
type Store interface {
	UpsertEntry(ctx context.Context, entry *models.Entry) error
	AddActivity(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, patientIdentity string) ([]*models.Entry, []*models.Activity, error)
	Clear(ctx context.Context, patientIdentity string) error
}

// Service owns wellness log policy: date validation and per-patient scoping.
type Service struct {
	store Store
}

// New constructs the wellness service.
func New(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("wellness store is required")
	}
	return &Service{store: store}, nil
}

// SaveEntry upserts the daily metrics for (patient, date).
func (s *Service) SaveEntry(ctx context.Context, entry models.Entry) error {
	if strings.TrimSpace(entry.PatientIdentity) == "" {
		return dErrors.New(dErrors.CodeValidation, "patient identity is required")
	}
	if err := validateDate(entry.Date); err != nil {
		return err
	}
	if entry.WaterGlasses < 0 || entry.SleepHours < 0 {
		return dErrors.New(dErrors.CodeValidation, "water and sleep must be non-negative")
	}
	if err := s.store.UpsertEntry(ctx, &entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save entry")
	}
	return nil
}

// LogActivity appends one exercise session.
func (s *Service) LogActivity(ctx context.Context, patientIdentity, date, name string, duration float64) (*models.Activity, error) {
	if strings.TrimSpace(patientIdentity) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "patient identity is required")
	}
	if strings.TrimSpace(name) == "" || duration <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "name and duration required")
	}
	if date == "" {
		date = requestcontext.Now(ctx).Format("2006-01-02")
	} else if err := validateDate(date); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		ID:              uuid.New(),
		PatientIdentity: patientIdentity,
		Date:            date,
		Name:            name,
		DurationMinutes: duration,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.AddActivity(ctx, activity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log activity")
	}
	return activity, nil
}

// List returns the patient's entries and activities, newest first.
func (s *Service) List(ctx context.Context, patientIdentity string) ([]*models.Entry, []*models.Activity, error) {
	if strings.TrimSpace(patientIdentity) == "" {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "patient identity is required")
	}
	entries, activities, err := s.store.List(ctx, patientIdentity)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list wellness data")
	}
	return entries, activities, nil
}

// Clear removes all wellness data for the patient.
func (s *Service) Clear(ctx context.Context, patientIdentity string) error {
	if strings.TrimSpace(patientIdentity) == "" {
		return dErrors.New(dErrors.CodeValidation, "patient identity is required")
	}
	if err := s.store.Clear(ctx, patientIdentity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear wellness data")
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	return nil
}
