package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"healthstack/internal/notification/models"
	"healthstack/pkg/platform/sentinel"
)

// PostgresStore persists notifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, notification *models.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_email, title, message, created_at, read)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, notification.ID, notification.UserEmail, notification.Title,
		notification.Message, notification.Date, notification.Read)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userEmail string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_email, title, message, created_at, read
		FROM notifications
		WHERE lower(user_email) = lower($1)
		ORDER BY created_at DESC
	`, userEmail)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserEmail, &n.Title, &n.Message, &n.Date, &n.Read); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// MarkRead flips the read flag on the user's own notification. Another
// user's id behaves exactly like an unknown one.
func (s *PostgresStore) MarkRead(ctx context.Context, userEmail string, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND lower(user_email) = lower($2)
	`, id, userEmail)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
