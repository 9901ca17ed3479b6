package store

import (
	"context"
	"strings"
	"sync"

	"healthstack/internal/presence/models"
)

// InMemoryStore keeps presence records in memory for tests/dev. Identity
// keys are compared case-insensitively because identities are email-shaped.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.PresenceRecord
}

// NewMemory constructs an empty in-memory presence store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.PresenceRecord)}
}

func (s *InMemoryStore) Upsert(_ context.Context, record *models.PresenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *record
	if record.LastLocation != nil {
		loc := *record.LastLocation
		stored.LastLocation = &loc
	}
	s.records[strings.ToLower(record.Identity)] = &stored
	return nil
}

// GetMany returns records for exactly the identities that have one,
// preserving the order of the input sequence.
func (s *InMemoryStore) GetMany(_ context.Context, identities []string) ([]*models.PresenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.PresenceRecord, 0, len(identities))
	for _, identity := range identities {
		if record, ok := s.records[strings.ToLower(identity)]; ok {
			copied := *record
			if record.LastLocation != nil {
				loc := *record.LastLocation
				copied.LastLocation = &loc
			}
			out = append(out, &copied)
		}
	}
	return out, nil
}
