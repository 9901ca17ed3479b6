// Package models defines wellness log records.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one day of wellness metrics for a patient, keyed by
// (patient, date). Date is a YYYY-MM-DD string so upserts match the way
// clients report.
type Entry struct {
	PatientIdentity string  `json:"patientEmail"`
	Date            string  `json:"date"`
	WaterGlasses    float64 `json:"water"`
	SleepHours      float64 `json:"sleep"`
}

// Activity is one logged exercise session.
type Activity struct {
	ID              uuid.UUID `json:"id"`
	PatientIdentity string    `json:"patientEmail"`
	Date            string    `json:"date"`
	Name            string    `json:"name"`
	DurationMinutes float64   `json:"duration"`
	CreatedAt       time.Time `json:"createdAt"`
}
