// Package service implements the in-app notification inbox.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"healthstack/internal/notification/models"
	dErrors "healthstack/pkg/domain-errors"
	"healthstack/pkg/platform/sentinel"
	"healthstack/pkg/requestcontext"
)

// Store is the persistence boundary for notifications.
type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userEmail string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userEmail string, id uuid.UUID) error
}

// Service creates and serves user notifications.
type Service struct {
	store Store
}

// New constructs the notification service.
func New(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("notification store is required")
	}
	return &Service{store: store}, nil
}

// Notify records a notification for the user. Other services call this when
// something the user should see happens.
func (s *Service) Notify(ctx context.Context, userEmail, title, message string) (*models.Notification, error) {
	userEmail = strings.TrimSpace(userEmail)
	if userEmail == "" || title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user email and title are required")
	}

	notification := &models.Notification{
		ID:        uuid.New(),
		UserEmail: userEmail,
		Title:     title,
		Message:   message,
		Date:      requestcontext.Now(ctx),
		Read:      false,
	}
	if err := s.store.Create(ctx, notification); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create notification")
	}
	return notification, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userEmail string) ([]*models.Notification, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user email is required")
	}
	notifications, err := s.store.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags the user's own notification as read. Someone else's
// notification id resolves to not-found rather than leaking its existence.
func (s *Service) MarkRead(ctx context.Context, userEmail string, id uuid.UUID) error {
	if strings.TrimSpace(userEmail) == "" {
		return dErrors.New(dErrors.CodeValidation, "user email is required")
	}
	if err := s.store.MarkRead(ctx, userEmail, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}
