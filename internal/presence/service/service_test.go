package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthstack/internal/presence/models"
	"healthstack/internal/presence/store"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/requestcontext"
)

// =============================================================================
// Presence Tracker Test Suite
// =============================================================================

type PresenceServiceSuite struct {
	suite.Suite
	service *Service
	now     time.Time
	ctx     context.Context
}

func TestPresenceServiceSuite(t *testing.T) {
	suite.Run(t, new(PresenceServiceSuite))
}

func (s *PresenceServiceSuite) SetupTest() {
	var err error
	s.service, err = New(store.NewMemory(), nil)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *PresenceServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, nil)
		s.Error(err)
		s.Contains(err.Error(), "presence store is required")
	})
}

func (s *PresenceServiceSuite) TestReportLocation() {
	s.Run("blank identity is rejected", func() {
		err := s.service.ReportLocation(s.ctx, " ", models.Location{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("report stamps the request time", func() {
		err := s.service.ReportLocation(s.ctx, "helper@example.com", models.Location{Lat: 1, Lng: 2})
		s.NoError(err)

		records, err := s.service.GetPresence(s.ctx, []string{"helper@example.com"})
		s.NoError(err)
		s.Require().Len(records, 1)
		s.Equal(s.now, records[0].LastSeenAt)
		s.Require().NotNil(records[0].LastLocation)
		s.Equal(1.0, records[0].LastLocation.Lat)
		s.Equal(2.0, records[0].LastLocation.Lng)
	})

	s.Run("later reports replace earlier ones", func() {
		s.Require().NoError(s.service.ReportLocation(s.ctx, "helper@example.com", models.Location{Lat: 1, Lng: 2}))

		later := requestcontext.WithTime(context.Background(), s.now.Add(5*time.Minute))
		s.Require().NoError(s.service.ReportLocation(later, "helper@example.com", models.Location{Lat: 3, Lng: 4}))

		records, err := s.service.GetPresence(s.ctx, []string{"helper@example.com"})
		s.NoError(err)
		s.Require().Len(records, 1)
		s.Equal(3.0, records[0].LastLocation.Lat)
		s.Equal(s.now.Add(5*time.Minute), records[0].LastSeenAt)
	})
}

func (s *PresenceServiceSuite) TestGetPresence() {
	s.Run("empty identity set yields nothing", func() {
		records, err := s.service.GetPresence(s.ctx, nil)
		s.NoError(err)
		s.Empty(records)
	})

	s.Run("lookup ignores identity case and skips unknowns", func() {
		s.Require().NoError(s.service.ReportLocation(s.ctx, "Helper@Example.com", models.Location{Lat: 1, Lng: 2}))

		records, err := s.service.GetPresence(s.ctx, []string{"helper@example.com", "ghost@example.com"})
		s.NoError(err)
		s.Require().Len(records, 1)
	})
}
