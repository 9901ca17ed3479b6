package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"healthstack/internal/notification/models"
	"healthstack/pkg/platform/sentinel"
)

// InMemoryStore keeps notifications in memory for tests/dev.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*models.Notification
}

// NewMemory constructs an empty in-memory notification store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[uuid.UUID]*models.Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[notification.ID]; ok {
		return fmt.Errorf("notification %s: %w", notification.ID, sentinel.ErrConflict)
	}
	stored := *notification
	s.notifications[notification.ID] = &stored
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (s *InMemoryStore) ListByUser(_ context.Context, userEmail string) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, notification := range s.notifications {
		if !strings.EqualFold(notification.UserEmail, userEmail) {
			continue
		}
		copied := *notification
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// MarkRead flips the read flag on the user's own notification. Another
// user's id behaves exactly like an unknown one.
func (s *InMemoryStore) MarkRead(_ context.Context, userEmail string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, ok := s.notifications[id]
	if !ok || !strings.EqualFold(notification.UserEmail, userEmail) {
		return fmt.Errorf("notification %s: %w", id, sentinel.ErrNotFound)
	}
	notification.Read = true
	return nil
}
