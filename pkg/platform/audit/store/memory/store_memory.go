// Package memory provides the in-process audit sink used in development and
// tests.
package memory

import (
	"context"
	"strings"
	"sync"

	audit "healthstack/pkg/platform/audit"
)

// InMemoryStore appends audit events to a slice guarded by a mutex.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

// NewInMemoryStore constructs an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByIdentity returns events for one identity in append order.
func (s *InMemoryStore) ListByIdentity(_ context.Context, identity string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if strings.EqualFold(e.Identity, identity) {
			out = append(out, e)
		}
	}
	return out, nil
}
