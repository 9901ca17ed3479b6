// Package service implements the presence tracker.
package service

import (
	"context"
	"fmt"
	"strings"

	"healthstack/internal/platform/metrics"
	"healthstack/internal/presence/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/requestcontext"
)

// Store is the persistence boundary for presence records.
type Store interface {
	Upsert(ctx context.Context, record *models.PresenceRecord) error
	GetMany(ctx context.Context, identities []string) ([]*models.PresenceRecord, error)
}

// Service records last-seen locations and serves bulk presence lookups for
// the SOS dispatcher.
type Service struct {
	store   Store
	metrics *metrics.Metrics
}

// New constructs the presence service.
func New(store Store, m *metrics.Metrics) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("presence store is required")
	}
	return &Service{store: store, metrics: m}, nil
}

// ReportLocation upserts the identity's presence record with the reported
// location and the request time. Identity is the idempotency key; reports
// from distinct identities commute.
func (s *Service) ReportLocation(ctx context.Context, identity string, location models.Location) error {
	if strings.TrimSpace(identity) == "" {
		return dErrors.New(dErrors.CodeValidation, "identity is required")
	}

	record := &models.PresenceRecord{
		Identity:     identity,
		LastLocation: &location,
		LastSeenAt:   requestcontext.Now(ctx),
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save location")
	}

	s.metrics.IncrementLocationReports()
	return nil
}

// GetPresence returns presence records for exactly the given identities that
// have one, in input order.
func (s *Service) GetPresence(ctx context.Context, identities []string) ([]*models.PresenceRecord, error) {
	if len(identities) == 0 {
		return nil, nil
	}
	records, err := s.store.GetMany(ctx, identities)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch presence")
	}
	return records, nil
}
