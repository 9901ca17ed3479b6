// Package models defines the transient SOS dispatch types. Nothing here is
// persisted; candidates and the selected set are computed once per event.
package models

import (
	"time"

	presencemodels "healthstack/internal/presence/models"
)

// DispatchRequest is one emergency trigger.
type DispatchRequest struct {
	TriggeringIdentity string
	DisplayName        string
	Location           presencemodels.Location
}

// Candidate is a contact with fresh presence data, annotated with its
// distance from the emergency location.
type Candidate struct {
	Identity       string    `json:"email"`
	Name           string    `json:"name"`
	DistanceMeters float64   `json:"dist"`
	LastSeenAt     time.Time `json:"lastSeen"`
}

// DispatchResult reports who was notified, in ascending distance order.
type DispatchResult struct {
	Notified []Candidate `json:"notified"`
}
