// Package service implements the emergency contact registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthstack/internal/contacts/models"
	dErrors "healthstack/pkg/domain-errors"
	audit "healthstack/pkg/platform/audit"
	"healthstack/pkg/platform/sentinel"
	"healthstack/pkg/requestcontext"
)

// Store is the persistence boundary for contact lists.
type Store interface {
	Get(ctx context.Context, patientIdentity string) (*models.ContactList, error)
	Create(ctx context.Context, list *models.ContactList) error
	Replace(ctx context.Context, list *models.ContactList) error
}

// AuditEmitter records contact mutations. Who can reach a patient in an
// emergency is compliance-relevant, so every effective add and remove is
// captured.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns contact registry policy: case-insensitive uniqueness on add,
// no-op removal of absent identities, and the record lifecycle.
type Service struct {
	store   Store
	auditor AuditEmitter
}

// Option configures optional collaborators.
type Option func(*Service)

// WithAuditEmitter attaches the audit publisher.
func WithAuditEmitter(a AuditEmitter) Option {
	return func(s *Service) { s.auditor = a }
}

// New constructs the registry service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("contact store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetContacts returns the patient's contact identities in stored order.
// A patient without a record gets an empty sequence, never an error.
func (s *Service) GetContacts(ctx context.Context, patientIdentity string) ([]string, error) {
	if strings.TrimSpace(patientIdentity) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "patient identity is required")
	}

	list, err := s.store.Get(ctx, patientIdentity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []string{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch contacts")
	}
	return list.Identities(), nil
}

// AddContact registers a contact identity for the patient. Adding an identity
// already present (compared ignoring case) is a no-op that still returns the
// current sequence.
func (s *Service) AddContact(ctx context.Context, patientIdentity, contactIdentity string) ([]string, error) {
	patientIdentity = strings.TrimSpace(patientIdentity)
	contactIdentity = strings.TrimSpace(contactIdentity)
	if patientIdentity == "" || contactIdentity == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "patient and contact identity are required")
	}

	list, err := s.store.Get(ctx, patientIdentity)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch contacts")
		}
		list = &models.ContactList{
			PatientIdentity: patientIdentity,
			Contacts:        []models.Contact{{Identity: contactIdentity}},
		}
		if err := s.store.Create(ctx, list); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add contact")
		}
		s.audit(ctx, audit.EventContactAdded, patientIdentity, contactIdentity)
		return list.Identities(), nil
	}

	for _, c := range list.Contacts {
		if strings.EqualFold(c.Identity, contactIdentity) {
			return list.Identities(), nil
		}
	}

	list.Contacts = append(list.Contacts, models.Contact{Identity: contactIdentity})
	if err := s.store.Replace(ctx, list); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add contact")
	}
	s.audit(ctx, audit.EventContactAdded, patientIdentity, contactIdentity)
	return list.Identities(), nil
}

// RemoveContact deletes a contact identity from the patient's record.
// Removing an identity that is not present is a no-op; a patient without a
// record is a not-found error. The record itself survives with zero contacts.
func (s *Service) RemoveContact(ctx context.Context, patientIdentity, contactIdentity string) ([]string, error) {
	patientIdentity = strings.TrimSpace(patientIdentity)
	contactIdentity = strings.TrimSpace(contactIdentity)
	if patientIdentity == "" || contactIdentity == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "patient and contact identity are required")
	}

	list, err := s.store.Get(ctx, patientIdentity)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no contacts found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch contacts")
	}

	before := len(list.Contacts)
	kept := list.Contacts[:0]
	for _, c := range list.Contacts {
		if !strings.EqualFold(c.Identity, contactIdentity) {
			kept = append(kept, c)
		}
	}
	list.Contacts = kept

	if err := s.store.Replace(ctx, list); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove contact")
	}
	if len(list.Contacts) < before {
		s.audit(ctx, audit.EventContactRemoved, patientIdentity, contactIdentity)
	}
	return list.Identities(), nil
}

func (s *Service) audit(ctx context.Context, action audit.AuditEvent, patientIdentity, contactIdentity string) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Identity:  patientIdentity,
		Action:    string(action),
		Subject:   contactIdentity,
		RequestID: requestcontext.RequestID(ctx),
	})
}
