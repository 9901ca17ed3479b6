package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"healthstack/internal/appointment/models"
	"healthstack/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound (wrapped) when the requested record does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps appointments in memory for tests/dev.
type InMemoryStore struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*models.Appointment
}

// NewMemory constructs an empty in-memory appointment store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{appointments: make(map[uuid.UUID]*models.Appointment)}
}

func (s *InMemoryStore) Create(_ context.Context, appointment *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[appointment.ID]; ok {
		return fmt.Errorf("appointment %s: %w", appointment.ID, sentinel.ErrConflict)
	}
	stored := *appointment
	s.appointments[appointment.ID] = &stored
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appointment, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s: %w", id, sentinel.ErrNotFound)
	}
	out := *appointment
	return &out, nil
}

// List returns appointments newest first. An empty patientEmail lists all.
func (s *InMemoryStore) List(_ context.Context, patientEmail string) ([]*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Appointment, 0, len(s.appointments))
	for _, appointment := range s.appointments {
		if patientEmail != "" && !strings.EqualFold(appointment.PatientEmail, patientEmail) {
			continue
		}
		copied := *appointment
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	appointment, ok := s.appointments[id]
	if !ok {
		return fmt.Errorf("appointment %s: %w", id, sentinel.ErrNotFound)
	}
	appointment.Status = status
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return fmt.Errorf("appointment %s: %w", id, sentinel.ErrNotFound)
	}
	delete(s.appointments, id)
	return nil
}
