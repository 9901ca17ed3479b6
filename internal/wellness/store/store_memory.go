package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"healthstack/internal/wellness/models"
)

type entryKey struct {
	patient string
	date    string
}

// InMemoryStore keeps wellness logs in memory for tests/dev.
type InMemoryStore struct {
	mu         sync.RWMutex
	entries    map[entryKey]*models.Entry
	activities []*models.Activity
}

// NewMemory constructs an empty in-memory wellness store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[entryKey]*models.Entry)}
}

func (s *InMemoryStore) UpsertEntry(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *entry
	s.entries[s.key(entry.PatientIdentity, entry.Date)] = &copied
	return nil
}

func (s *InMemoryStore) AddActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *activity
	s.activities = append(s.activities, &copied)
	return nil
}

// List returns the patient's entries and activities, newest date first.
func (s *InMemoryStore) List(_ context.Context, patientIdentity string) ([]*models.Entry, []*models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*models.Entry
	for _, e := range s.entries {
		if strings.EqualFold(e.PatientIdentity, patientIdentity) {
			copied := *e
			entries = append(entries, &copied)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })

	var activities []*models.Activity
	for _, a := range s.activities {
		if strings.EqualFold(a.PatientIdentity, patientIdentity) {
			copied := *a
			activities = append(activities, &copied)
		}
	}
	sort.SliceStable(activities, func(i, j int) bool { return activities[i].Date > activities[j].Date })

	return entries, activities, nil
}

// Clear removes all wellness data for the patient.
func (s *InMemoryStore) Clear(_ context.Context, patientIdentity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.entries {
		if k.patient == strings.ToLower(patientIdentity) {
			delete(s.entries, k)
		}
	}
	kept := s.activities[:0]
	for _, a := range s.activities {
		if !strings.EqualFold(a.PatientIdentity, patientIdentity) {
			kept = append(kept, a)
		}
	}
	s.activities = kept
	return nil
}

func (s *InMemoryStore) key(patient, date string) entryKey {
	return entryKey{patient: strings.ToLower(patient), date: date}
}
