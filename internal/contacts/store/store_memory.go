package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"healthstack/internal/contacts/models"
	"healthstack/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound (wrapped) when the requested record does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps contact lists in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	lists map[string]*models.ContactList
}

// NewMemory constructs an empty in-memory contact list store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{lists: make(map[string]*models.ContactList)}
}

func (s *InMemoryStore) Get(_ context.Context, patientIdentity string) (*models.ContactList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.lists[s.key(patientIdentity)]
	if !ok {
		return nil, fmt.Errorf("contact list for %s: %w", patientIdentity, sentinel.ErrNotFound)
	}
	return copyList(list), nil
}

func (s *InMemoryStore) Create(_ context.Context, list *models.ContactList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(list.PatientIdentity)
	if _, ok := s.lists[key]; ok {
		return fmt.Errorf("contact list for %s: %w", list.PatientIdentity, sentinel.ErrConflict)
	}
	stored := copyList(list)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.lists[key] = stored
	return nil
}

func (s *InMemoryStore) Replace(_ context.Context, list *models.ContactList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(list.PatientIdentity)
	existing, ok := s.lists[key]
	if !ok {
		return fmt.Errorf("contact list for %s: %w", list.PatientIdentity, sentinel.ErrNotFound)
	}
	stored := copyList(list)
	stored.CreatedAt = existing.CreatedAt
	s.lists[key] = stored
	return nil
}

func (s *InMemoryStore) key(patientIdentity string) string {
	return strings.ToLower(patientIdentity)
}

func copyList(list *models.ContactList) *models.ContactList {
	out := &models.ContactList{
		PatientIdentity: list.PatientIdentity,
		Contacts:        make([]models.Contact, len(list.Contacts)),
		CreatedAt:       list.CreatedAt,
	}
	copy(out.Contacts, list.Contacts)
	return out
}
