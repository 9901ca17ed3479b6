package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	contactservice "healthstack/internal/contacts/service"
	contactstore "healthstack/internal/contacts/store"
	notifymemory "healthstack/internal/notify/memory"
	"healthstack/internal/platform/config"
	"healthstack/internal/platform/metrics"
	presencemodels "healthstack/internal/presence/models"
	presenceservice "healthstack/internal/presence/service"
	presencestore "healthstack/internal/presence/store"
	"healthstack/internal/sos/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/requestcontext"
)

// =============================================================================
// SOS Dispatcher Test Suite
// =============================================================================
// Justification for unit tests: responder selection combines freshness
// filtering, distance ranking, the radius/cap/fallback policy and batched
// fan-out. These interactions need precise control over clock and presence
// data that is impractical through E2E tests.

type DispatchSuite struct {
	suite.Suite
	contacts  *contactservice.Service
	presence  *presenceservice.Service
	messenger *notifymemory.Messenger
	service   *Service

	now time.Time
	ctx context.Context
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}

func (s *DispatchSuite) SetupTest() {
	var err error
	s.contacts, err = contactservice.New(contactstore.NewMemory())
	s.Require().NoError(err)
	s.presence, err = presenceservice.New(presencestore.NewMemory(), nil)
	s.Require().NoError(err)
	s.messenger = notifymemory.New()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service, err = New(s.contacts, s.presence, s.messenger, config.SOSConfig{
		FreshnessWindow: 10 * time.Minute,
		RadiusMeters:    500,
		MaxResponders:   5,
	}, logger)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

// SetupSubTest gives every s.Run subtest the same fresh state SetupTest
// gives each test method; the subtests register their own contacts and
// assert on exactly those.
func (s *DispatchSuite) SetupSubTest() {
	s.SetupTest()
}

// addContact registers a contact for the default patient.
func (s *DispatchSuite) addContact(contactIdentity string) {
	_, err := s.contacts.AddContact(s.ctx, "patient@example.com", contactIdentity)
	s.Require().NoError(err)
}

// report records presence for identity as seen at the given instant.
func (s *DispatchSuite) report(identity string, lat, lng float64, seenAt time.Time) {
	ctx := requestcontext.WithTime(context.Background(), seenAt)
	err := s.presence.ReportLocation(ctx, identity, presencemodels.Location{Lat: lat, Lng: lng})
	s.Require().NoError(err)
}

func (s *DispatchSuite) dispatch() (*models.DispatchResult, error) {
	return s.service.Dispatch(s.ctx, models.DispatchRequest{
		TriggeringIdentity: "patient@example.com",
		DisplayName:        "Pat Doe",
		Location:           presencemodels.Location{Lat: 0, Lng: 0},
	})
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *DispatchSuite) TestNew() {
	s.Run("nil contact source returns error", func() {
		_, err := New(nil, s.presence, s.messenger, config.SOSConfig{}, nil)
		s.Error(err)
		s.Contains(err.Error(), "contact source is required")
	})

	s.Run("nil presence source returns error", func() {
		_, err := New(s.contacts, nil, s.messenger, config.SOSConfig{}, nil)
		s.Error(err)
		s.Contains(err.Error(), "presence source is required")
	})

	s.Run("nil messenger returns error", func() {
		_, err := New(s.contacts, s.presence, nil, config.SOSConfig{}, nil)
		s.Error(err)
		s.Contains(err.Error(), "messenger is required")
	})
}

// =============================================================================
// Structural Failure Tests
// =============================================================================

func (s *DispatchSuite) TestDispatchStructuralFailures() {
	s.Run("blank identity is a validation error", func() {
		_, err := s.service.Dispatch(s.ctx, models.DispatchRequest{TriggeringIdentity: "  "})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Empty(s.messenger.Sent())
	})

	s.Run("patient without contacts", func() {
		_, err := s.dispatch()
		s.True(dErrors.HasCode(err, dErrors.CodeNoContacts))
		s.Empty(s.messenger.Sent())
	})

	s.Run("contacts exist but none ever reported presence", func() {
		s.addContact("helper@example.com")
		_, err := s.dispatch()
		s.True(dErrors.HasCode(err, dErrors.CodeNoResponders))
		s.Empty(s.messenger.Sent())
	})

	s.Run("all presence older than the freshness window", func() {
		s.addContact("helper@example.com")
		s.report("helper@example.com", 0, 0.001, s.now.Add(-11*time.Minute))
		_, err := s.dispatch()
		s.True(dErrors.HasCode(err, dErrors.CodeNoResponders))
		s.Empty(s.messenger.Sent())
	})
}

// =============================================================================
// Selection Policy Tests
// =============================================================================

func (s *DispatchSuite) TestSelectionPolicy() {
	s.Run("exactly at the window boundary still counts as fresh", func() {
		s.addContact("edge@example.com")
		s.report("edge@example.com", 0, 0.001, s.now.Add(-10*time.Minute))

		result, err := s.dispatch()
		s.NoError(err)
		s.Len(result.Notified, 1)
		s.Equal("edge@example.com", result.Notified[0].Identity)
	})

	s.Run("nobody within the radius falls back to single nearest", func() {
		s.addContact("far@example.com")
		s.addContact("farther@example.com")
		s.report("far@example.com", 0, 0.01, s.now.Add(-time.Minute))
		s.report("farther@example.com", 0, 0.02, s.now.Add(-time.Minute))

		result, err := s.dispatch()
		s.NoError(err)
		s.Len(result.Notified, 1)
		s.Equal("far@example.com", result.Notified[0].Identity)
	})

	s.Run("selection caps at five closest within the radius", func() {
		offsets := []float64{0.0005, 0.001, 0.0015, 0.002, 0.0025, 0.003, 0.01}
		identities := []string{"a", "b", "c", "d", "e", "f", "g"}
		for i, id := range identities {
			identity := id + "@example.com"
			s.addContact(identity)
			s.report(identity, 0, offsets[i], s.now.Add(-time.Minute))
		}

		result, err := s.dispatch()
		s.NoError(err)
		s.Require().Len(result.Notified, 5)
		for i, want := range []string{"a", "b", "c", "d", "e"} {
			s.Equal(want+"@example.com", result.Notified[i].Identity)
		}
		for i := 1; i < len(result.Notified); i++ {
			s.LessOrEqual(result.Notified[i-1].DistanceMeters, result.Notified[i].DistanceMeters)
		}
	})

	s.Run("duplicate contacts differing only in case count once", func() {
		s.addContact("Helper@Example.com")
		s.addContact("helper@example.com")
		s.report("helper@example.com", 0, 0.001, s.now.Add(-time.Minute))

		result, err := s.dispatch()
		s.NoError(err)
		s.Len(result.Notified, 1)
	})

	s.Run("equidistant candidates keep contact order", func() {
		s.addContact("zeta@example.com")
		s.addContact("alpha@example.com")
		s.report("zeta@example.com", 0, 0.002, s.now.Add(-time.Minute))
		s.report("alpha@example.com", 0, 0.002, s.now.Add(-time.Minute))

		result, err := s.dispatch()
		s.NoError(err)
		s.Require().Len(result.Notified, 2)
		s.Equal("zeta@example.com", result.Notified[0].Identity)
		s.Equal("alpha@example.com", result.Notified[1].Identity)
	})
}

// =============================================================================
// Notification Tests
// =============================================================================

func (s *DispatchSuite) TestNotification() {
	s.Run("one batched message reaches every selected responder", func() {
		s.addContact("near@example.com")
		s.addContact("close@example.com")
		s.report("near@example.com", 0, 0.001, s.now.Add(-time.Minute))
		s.report("close@example.com", 0, 0.002, s.now.Add(-time.Minute))

		result, err := s.dispatch()
		s.NoError(err)
		s.Len(result.Notified, 2)

		sent := s.messenger.Sent()
		s.Require().Len(sent, 1)
		s.Equal([]string{"near@example.com", "close@example.com"}, sent[0].Recipients)
		s.Equal("🚨 SOS: Pat Doe needs help", sent[0].Subject)
		s.Contains(sent[0].Body, "Pat Doe has triggered an SOS.")
		s.Contains(sent[0].Body, "Location: 0, 0")
		s.Contains(sent[0].Body, "https://www.google.com/maps?q=0,0")
	})

	s.Run("missing display name falls back to the identity", func() {
		s.addContact("near@example.com")
		s.report("near@example.com", 0, 0.001, s.now.Add(-time.Minute))

		_, err := s.service.Dispatch(s.ctx, models.DispatchRequest{
			TriggeringIdentity: "patient@example.com",
			Location:           presencemodels.Location{Lat: 0, Lng: 0},
		})
		s.NoError(err)

		sent := s.messenger.Sent()
		s.Require().Len(sent, 1)
		s.Contains(sent[0].Subject, "patient@example.com")
	})

	s.Run("channel failure surfaces as dispatch error", func() {
		s.addContact("near@example.com")
		s.report("near@example.com", 0, 0.001, s.now.Add(-time.Minute))
		s.messenger.FailWith(errors.New("smtp: connection refused"))

		_, err := s.dispatch()
		s.True(dErrors.HasCode(err, dErrors.CodeDispatchFailed))
	})
}

// =============================================================================
// Metric Outcome Tests
// =============================================================================
// Justification for unit tests: dashboards alert on dispatch outcomes, so a
// failing store must count as an infrastructure error, not as caller error.

type failingContacts struct{}

func (failingContacts) GetContacts(context.Context, string) ([]string, error) {
	return nil, errors.New("contact store down")
}

type failingPresence struct{}

func (failingPresence) GetPresence(context.Context, []string) ([]*presencemodels.PresenceRecord, error) {
	return nil, errors.New("presence store down")
}

type workingContacts struct{}

func (workingContacts) GetContacts(context.Context, string) ([]string, error) {
	return []string{"helper@example.com"}, nil
}

func TestDispatchStoreFailureOutcomes(t *testing.T) {
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.SOSConfig{FreshnessWindow: 10 * time.Minute, RadiusMeters: 500, MaxResponders: 5}
	req := models.DispatchRequest{
		TriggeringIdentity: "patient@example.com",
		Location:           presencemodels.Location{Lat: 0, Lng: 0},
	}

	contactFail, err := New(failingContacts{}, failingPresence{}, notifymemory.New(), cfg, logger, WithMetrics(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := contactFail.Dispatch(context.Background(), req); err == nil {
		t.Fatal("expected contact store failure to surface")
	}

	presenceFail, err := New(workingContacts{}, failingPresence{}, notifymemory.New(), cfg, logger, WithMetrics(m))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := presenceFail.Dispatch(context.Background(), req); err == nil {
		t.Fatal("expected presence store failure to surface")
	}

	if got := testutil.ToFloat64(m.SOSDispatches.WithLabelValues(metrics.OutcomeError)); got != 2 {
		t.Fatalf("error outcome count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SOSDispatches.WithLabelValues(metrics.OutcomeInvalid)); got != 0 {
		t.Fatalf("invalid outcome count = %v, want 0", got)
	}
}
