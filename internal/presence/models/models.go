// Package models defines presence records and the checked location value
// type.
package models

import (
	"math"
	"time"

	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/geo"
)

// Location is a validated coordinate pair. Construct it through NewLocation
// so nothing downstream ever computes on a missing or non-numeric value.
type Location = geo.Point

// NewLocation validates a loosely-typed coordinate payload. Pointers model
// JSON absence: a missing field arrives as nil, not as zero.
func NewLocation(lat, lng *float64) (Location, error) {
	if lat == nil || lng == nil {
		return Location{}, dErrors.New(dErrors.CodeValidation, "location lat and lng are required")
	}
	if !isFinite(*lat) || !isFinite(*lng) {
		return Location{}, dErrors.New(dErrors.CodeValidation, "location lat and lng must be numeric")
	}
	if *lat < -90 || *lat > 90 || *lng < -180 || *lng > 180 {
		return Location{}, dErrors.New(dErrors.CodeValidation, "location out of range")
	}
	return Location{Lat: *lat, Lng: *lng}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// PresenceRecord is the last known location and timestamp for an identity.
// Created and updated idempotently on each location report, never deleted.
type PresenceRecord struct {
	Identity     string    `json:"identity"`
	LastLocation *Location `json:"lastLocation,omitempty"`
	LastSeenAt   time.Time `json:"lastSeen"`
}

// FreshAt reports whether the record is usable for responder selection at
// the given evaluation time: it has a location and was seen inside the
// freshness window.
func (r *PresenceRecord) FreshAt(now time.Time, window time.Duration) bool {
	if r == nil || r.LastLocation == nil || r.LastSeenAt.IsZero() {
		return false
	}
	return !r.LastSeenAt.Before(now.Add(-window))
}
