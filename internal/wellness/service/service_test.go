package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthstack/internal/wellness/models"
	"healthstack/internal/wellness/store"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/requestcontext"
)

// =============================================================================
// Wellness Service Test Suite
// =============================================================================

type WellnessServiceSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func TestWellnessServiceSuite(t *testing.T) {
	suite.Run(t, new(WellnessServiceSuite))
}

func (s *WellnessServiceSuite) SetupTest() {
	var err error
	s.service, err = New(store.NewMemory())
	s.Require().NoError(err)
	s.ctx = requestcontext.WithTime(context.Background(),
		time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC))
}

func (s *WellnessServiceSuite) TestSaveEntry() {
	s.Run("malformed date is rejected", func() {
		err := s.service.SaveEntry(s.ctx, models.Entry{
			PatientIdentity: "pat@example.com",
			Date:            "14-03-2026",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("negative metrics are rejected", func() {
		err := s.service.SaveEntry(s.ctx, models.Entry{
			PatientIdentity: "pat@example.com",
			Date:            "2026-03-14",
			SleepHours:      -1,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("same day saves replace each other", func() {
		entry := models.Entry{
			PatientIdentity: "pat@example.com",
			Date:            "2026-03-14",
			WaterGlasses:    4,
			SleepHours:      7,
		}
		s.Require().NoError(s.service.SaveEntry(s.ctx, entry))

		entry.WaterGlasses = 6
		s.Require().NoError(s.service.SaveEntry(s.ctx, entry))

		entries, _, err := s.service.List(s.ctx, "pat@example.com")
		s.NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(6.0, entries[0].WaterGlasses)
	})
}

func (s *WellnessServiceSuite) TestLogActivity() {
	s.Run("name and duration are required", func() {
		_, err := s.service.LogActivity(s.ctx, "pat@example.com", "", "run", 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("blank date defaults to the request day", func() {
		activity, err := s.service.LogActivity(s.ctx, "pat@example.com", "", "run", 30)
		s.NoError(err)
		s.Equal("2026-03-14", activity.Date)
	})
}

func (s *WellnessServiceSuite) TestListAndClear() {
	s.Run("list returns newest date first", func() {
		for _, date := range []string{"2026-03-12", "2026-03-14", "2026-03-13"} {
			s.Require().NoError(s.service.SaveEntry(s.ctx, models.Entry{
				PatientIdentity: "pat@example.com",
				Date:            date,
			}))
		}

		entries, _, err := s.service.List(s.ctx, "pat@example.com")
		s.NoError(err)
		s.Require().Len(entries, 3)
		s.Equal("2026-03-14", entries[0].Date)
		s.Equal("2026-03-12", entries[2].Date)
	})

	s.Run("clear only touches the given patient", func() {
		s.Require().NoError(s.service.SaveEntry(s.ctx, models.Entry{
			PatientIdentity: "pat@example.com", Date: "2026-03-14",
		}))
		s.Require().NoError(s.service.SaveEntry(s.ctx, models.Entry{
			PatientIdentity: "other@example.com", Date: "2026-03-14",
		}))

		s.Require().NoError(s.service.Clear(s.ctx, "pat@example.com"))

		entries, _, err := s.service.List(s.ctx, "pat@example.com")
		s.NoError(err)
		s.Empty(entries)

		entries, _, err = s.service.List(s.ctx, "other@example.com")
		s.NoError(err)
		s.Len(entries, 1)
	})
}
