// Package service implements the SOS dispatcher: responder selection and
// notification fan-out for one emergency event.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"healthstack/internal/notify"
	"healthstack/internal/platform/config"
	"healthstack/internal/platform/metrics"
	presencemodels "healthstack/internal/presence/models"
	"healthstack/internal/sos/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/geo"
	audit "healthstack/pkg/platform/audit"
	pstrings "healthstack/pkg/platform/strings"
	"healthstack/pkg/requestcontext"
)

// ContactSource provides the triggering patient's registered contacts.
type ContactSource interface {
	GetContacts(ctx context.Context, patientIdentity string) ([]string, error)
}

// PresenceSource provides last-known locations for a set of identities.
type PresenceSource interface {
	GetPresence(ctx context.Context, identities []string) ([]*presencemodels.PresenceRecord, error)
}

// Directory resolves display names for identities. Identities without a
// known name are simply absent from the returned map.
type Directory interface {
	GetNames(ctx context.Context, identities []string) (map[string]string, error)
}

// AuditEmitter records dispatch outcomes.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the stateless SOS dispatcher. All collaborators are injected;
// there are no package-level singletons so tests can substitute fakes.
type Service struct {
	contacts  ContactSource
	presence  PresenceSource
	directory Directory
	messenger notify.Messenger
	cfg       config.SOSConfig
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   AuditEmitter
	tracer    trace.Tracer
}

// Option configures optional collaborators.
type Option func(*Service)

// WithMetrics attaches dispatch metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAuditEmitter attaches the audit publisher.
func WithAuditEmitter(a AuditEmitter) Option {
	return func(s *Service) { s.auditor = a }
}

// WithDirectory attaches a display-name resolver.
func WithDirectory(d Directory) Option {
	return func(s *Service) { s.directory = d }
}

// New constructs the dispatcher.
func New(contacts ContactSource, presence PresenceSource, messenger notify.Messenger, cfg config.SOSConfig, logger *slog.Logger, opts ...Option) (*Service, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact source is required")
	}
	if presence == nil {
		return nil, fmt.Errorf("presence source is required")
	}
	if messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		contacts:  contacts,
		presence:  presence,
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
		tracer:    otel.Tracer("healthstack/sos"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dispatch runs the full selection and notification pipeline for one
// emergency event:
//
//  1. fetch the patient's contacts (no contacts is a structural failure)
//  2. fetch presence for exactly that set
//  3. keep contacts seen within the freshness window that have a location
//  4. rank by haversine distance, stable on retrieval order
//  5. take everyone within the radius up to the cap; if nobody is inside
//     the radius, fall back to the single nearest candidate
//  6. send one batched message to all selected recipients
//
// Structural failures (no contacts, no fresh presence) are distinct from
// transient dispatch failures: retrying the former without new presence
// data cannot succeed.
func (s *Service) Dispatch(ctx context.Context, req models.DispatchRequest) (*models.DispatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "sos.Dispatch")
	defer span.End()

	if strings.TrimSpace(req.TriggeringIdentity) == "" {
		s.observe(metrics.OutcomeInvalid, 0)
		return nil, dErrors.New(dErrors.CodeValidation, "triggering identity is required")
	}
	span.SetAttributes(attribute.String("sos.identity", req.TriggeringIdentity))

	contactIdentities, err := s.contacts.GetContacts(ctx, req.TriggeringIdentity)
	if err != nil {
		s.observe(metrics.OutcomeError, 0)
		return nil, err
	}
	contactIdentities = pstrings.DedupeAndTrimLower(contactIdentities)
	if len(contactIdentities) == 0 {
		s.observe(metrics.OutcomeNoContacts, 0)
		s.audit(ctx, audit.EventSOSFailed, req.TriggeringIdentity, "no emergency contacts registered")
		return nil, dErrors.New(dErrors.CodeNoContacts, "no emergency contacts found")
	}

	records, err := s.presence.GetPresence(ctx, contactIdentities)
	if err != nil {
		s.observe(metrics.OutcomeError, 0)
		return nil, err
	}

	now := requestcontext.Now(ctx)
	candidates := s.rankCandidates(ctx, req.Location, contactIdentities, records, now)
	span.SetAttributes(attribute.Int("sos.candidates", len(candidates)))
	if len(candidates) == 0 {
		s.observe(metrics.OutcomeNoResponders, 0)
		s.audit(ctx, audit.EventSOSFailed, req.TriggeringIdentity, "no contact has fresh presence data")
		return nil, dErrors.New(dErrors.CodeNoResponders, "no nearby responders available")
	}

	selected := selectResponders(candidates, s.cfg.RadiusMeters, s.cfg.MaxResponders)
	span.SetAttributes(attribute.Int("sos.selected", len(selected)))

	msg := buildMessage(req, selected)
	if err := s.messenger.Send(ctx, msg); err != nil {
		s.observe(metrics.OutcomeDispatchError, 0)
		s.audit(ctx, audit.EventSOSFailed, req.TriggeringIdentity, "message channel failure")
		s.logger.ErrorContext(ctx, "sos dispatch failed",
			"identity", req.TriggeringIdentity,
			"recipients", len(selected),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeDispatchFailed, "failed to send SOS notifications")
	}

	s.observe(metrics.OutcomeNotified, len(selected))
	s.audit(ctx, audit.EventSOSDispatched, req.TriggeringIdentity,
		fmt.Sprintf("notified %d responders", len(selected)))
	s.logger.InfoContext(ctx, "sos dispatched",
		"identity", req.TriggeringIdentity,
		"candidates", len(candidates),
		"notified", len(selected),
	)

	return &models.DispatchResult{Notified: selected}, nil
}

// rankCandidates filters contacts to those with fresh presence and ranks
// them by ascending distance. The sort is stable so ties keep retrieval
// order, which tests depend on for determinism.
func (s *Service) rankCandidates(ctx context.Context, origin presencemodels.Location, contactIdentities []string, records []*presencemodels.PresenceRecord, now time.Time) []models.Candidate {
	byIdentity := make(map[string]*presencemodels.PresenceRecord, len(records))
	for _, r := range records {
		byIdentity[strings.ToLower(r.Identity)] = r
	}

	names := s.resolveNames(ctx, contactIdentities)

	candidates := make([]models.Candidate, 0, len(contactIdentities))
	for _, identity := range contactIdentities {
		record, ok := byIdentity[identity]
		if !ok || !record.FreshAt(now, s.cfg.FreshnessWindow) {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Identity:       identity,
			Name:           names[identity],
			DistanceMeters: geo.DistanceMeters(origin, *record.LastLocation),
			LastSeenAt:     record.LastSeenAt,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})
	return candidates
}

func (s *Service) resolveNames(ctx context.Context, identities []string) map[string]string {
	if s.directory == nil {
		return nil
	}
	names, err := s.directory.GetNames(ctx, identities)
	if err != nil {
		// Names are cosmetic; a directory fault must not block a dispatch.
		s.logger.WarnContext(ctx, "name resolution failed", "error", err.Error())
		return nil
	}
	return names
}

// selectResponders applies the radius/cap/fallback policy: everyone within
// the radius up to the cap, else exactly the single nearest candidate. This
// guarantees at least one responder is notified whenever any fresh presence
// data exists at all.
func selectResponders(candidates []models.Candidate, radiusMeters float64, maxResponders int) []models.Candidate {
	selected := make([]models.Candidate, 0, maxResponders)
	for _, c := range candidates {
		if c.DistanceMeters <= radiusMeters {
			selected = append(selected, c)
			if len(selected) == maxResponders {
				break
			}
		}
	}
	if len(selected) == 0 {
		selected = append(selected, candidates[0])
	}
	return selected
}

func buildMessage(req models.DispatchRequest, selected []models.Candidate) notify.Message {
	sender := req.DisplayName
	if strings.TrimSpace(sender) == "" {
		sender = req.TriggeringIdentity
	}

	lat := strconv.FormatFloat(req.Location.Lat, 'f', -1, 64)
	lng := strconv.FormatFloat(req.Location.Lng, 'f', -1, 64)
	mapLink := fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lng)

	recipients := make([]string, len(selected))
	for i, c := range selected {
		recipients[i] = c.Identity
	}

	return notify.Message{
		Recipients: recipients,
		Subject:    fmt.Sprintf("🚨 SOS: %s needs help", sender),
		Body: fmt.Sprintf("%s has triggered an SOS.\n\nLocation: %s, %s\nMap: %s\n\nPlease check immediately.",
			sender, lat, lng, mapLink),
	}
}

func (s *Service) observe(outcome string, notified int) {
	s.metrics.ObserveSOSDispatch(outcome, notified)
}

func (s *Service) audit(ctx context.Context, action audit.AuditEvent, identity, detail string) {
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
