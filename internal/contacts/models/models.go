// Package models defines the emergency contact registry records.
package models

import "time"

// Contact is one designated emergency contact for a patient.
type Contact struct {
	Identity string `json:"email"`
}

// ContactList is the per-patient registry record. It is created on the first
// successful add and never automatically deleted, even when the last contact
// is removed.
type ContactList struct {
	PatientIdentity string    `json:"patientEmail"`
	Contacts        []Contact `json:"contacts"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Identities returns the contact identities in stored order.
func (l *ContactList) Identities() []string {
	out := make([]string, 0, len(l.Contacts))
	for _, c := range l.Contacts {
		out = append(out, c.Identity)
	}
	return out
}
