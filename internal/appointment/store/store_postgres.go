package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"healthstack/internal/appointment/models"
	"healthstack/pkg/platform/sentinel"
)

// PostgresStore persists appointments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed appointment store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, appointment *models.Appointment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (id, patient_email, patient_name, doctor_email, doctor_name,
			appointment_date, appointment_time, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, appointment.ID, appointment.PatientEmail, appointment.PatientName,
		appointment.DoctorEmail, appointment.DoctorName,
		appointment.Date, appointment.Time, appointment.Reason,
		appointment.Status, appointment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_email, patient_name, doctor_email, doctor_name,
			appointment_date, appointment_time, reason, status, created_at
		FROM appointments
		WHERE id = $1
	`, id)
	var a models.Appointment
	err := row.Scan(&a.ID, &a.PatientEmail, &a.PatientName, &a.DoctorEmail, &a.DoctorName,
		&a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("appointment %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

// List returns appointments newest first. An empty patientEmail lists all.
func (s *PostgresStore) List(ctx context.Context, patientEmail string) ([]*models.Appointment, error) {
	query := `
		SELECT id, patient_email, patient_name, doctor_email, doctor_name,
			appointment_date, appointment_time, reason, status, created_at
		FROM appointments
	`
	var args []any
	if patientEmail != "" {
		query += ` WHERE lower(patient_email) = lower($1)`
		args = append(args, patientEmail)
	}
	query += ` ORDER BY appointment_date DESC, appointment_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []*models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.PatientEmail, &a.PatientName, &a.DoctorEmail, &a.DoctorName,
			&a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appointment %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM appointments WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("appointment %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
