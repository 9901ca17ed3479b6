package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Bookings always start as Pending; doctors move
// them forward through the status update endpoint.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

// Appointment is a booking between a patient and a doctor.
type Appointment struct {
	ID           uuid.UUID `json:"id"`
	PatientEmail string    `json:"patientEmail"`
	PatientName  string    `json:"patientName"`
	DoctorEmail  string    `json:"doctorEmail"`
	DoctorName   string    `json:"doctorName"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Reason       string    `json:"reason,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BookRequest is the payload for creating an appointment.
type BookRequest struct {
	PatientEmail string `json:"patientEmail"`
	PatientName  string `json:"patientName"`
	DoctorEmail  string `json:"doctorEmail"`
	DoctorName   string `json:"doctorName"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Reason       string `json:"reason"`
}
