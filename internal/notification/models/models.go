package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app notice delivered to a user's inbox.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserEmail string    `json:"userEmail"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Date      time.Time `json:"date"`
	Read      bool      `json:"read"`
}
