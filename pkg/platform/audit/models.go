// Package audit captures key domain actions for compliance and operational
// visibility. Events are emitted from services and fanned out through a
// publisher to a pluggable sink (memory, Kafka).
package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance
	// (health data, emergency dispatch records).
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Identity  string
	Action    string
	Subject   string
	Detail    string
	RequestID string
}

// AuditEvent names one auditable action.
type AuditEvent string

const (
	EventUserRegistered AuditEvent = "user_registered"
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventLoginFailed    AuditEvent = "login_failed"

	EventContactAdded   AuditEvent = "contact_added"
	EventContactRemoved AuditEvent = "contact_removed"

	EventSOSDispatched AuditEvent = "sos_dispatched"
	EventSOSFailed     AuditEvent = "sos_failed"

	EventAppointmentBooked    AuditEvent = "appointment_booked"
	EventAppointmentUpdated   AuditEvent = "appointment_updated"
	EventAppointmentCancelled AuditEvent = "appointment_cancelled"

	EventEmailSent AuditEvent = "email_sent"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered: CategoryCompliance,
	EventSOSDispatched:  CategoryCompliance,
	EventSOSFailed:      CategoryCompliance,
	EventContactAdded:   CategoryCompliance,
	EventContactRemoved: CategoryCompliance,

	EventLoginFailed: CategorySecurity,

	EventLoginSucceeded:       CategoryOperations,
	EventAppointmentBooked:    CategoryOperations,
	EventAppointmentUpdated:   CategoryOperations,
	EventAppointmentCancelled: CategoryOperations,
	EventEmailSent:            CategoryOperations,
}

// Category returns the event's category, defaulting to operations for
// unmapped actions.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
