package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"healthstack/internal/auth/models"
	"healthstack/pkg/platform/sentinel"
)

// InMemoryStore keeps users in memory for tests/dev. Email keys are
// case-insensitive.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*models.User)}
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := s.users[key]; ok {
		return fmt.Errorf("user %s: %w", user.Email, sentinel.ErrConflict)
	}
	copied := *user
	s.users[key] = &copied
	return nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, sentinel.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *InMemoryStore) FindByEmailAndRole(_ context.Context, email, role string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok || user.Role != role {
		return nil, fmt.Errorf("user %s with role %s: %w", email, role, sentinel.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

// GetNames resolves display names for a set of email identities. Unknown
// identities are absent from the result.
func (s *InMemoryStore) GetNames(_ context.Context, emails []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(emails))
	for _, email := range emails {
		if user, ok := s.users[strings.ToLower(email)]; ok {
			out[strings.ToLower(email)] = user.Name
		}
	}
	return out, nil
}
