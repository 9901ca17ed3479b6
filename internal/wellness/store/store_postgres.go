package store

import (
	"context"
	"database/sql"
	"fmt"

	"healthstack/internal/wellness/models"
)

// PostgresStore persists wellness logs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed wellness store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) UpsertEntry(ctx context.Context, entry *models.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wellness_entries (patient_identity, entry_date, water_glasses, sleep_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (patient_identity, entry_date) DO UPDATE SET
			water_glasses = EXCLUDED.water_glasses,
			sleep_hours = EXCLUDED.sleep_hours
	`, entry.PatientIdentity, entry.Date, entry.WaterGlasses, entry.SleepHours)
	if err != nil {
		return fmt.Errorf("upsert wellness entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddActivity(ctx context.Context, activity *models.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wellness_activities (id, patient_identity, activity_date, name, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, activity.ID, activity.PatientIdentity, activity.Date, activity.Name, activity.DurationMinutes, activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List returns the patient's entries and activities, newest date first.
func (s *PostgresStore) List(ctx context.Context, patientIdentity string) ([]*models.Entry, []*models.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT patient_identity, entry_date, water_glasses, sleep_hours
		FROM wellness_entries
		WHERE lower(patient_identity) = lower($1)
		ORDER BY entry_date DESC
	`, patientIdentity)
	if err != nil {
		return nil, nil, fmt.Errorf("list wellness entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.PatientIdentity, &e.Date, &e.WaterGlasses, &e.SleepHours); err != nil {
			return nil, nil, fmt.Errorf("scan wellness entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate wellness entries: %w", err)
	}

	arows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_identity, activity_date, name, duration_minutes, created_at
		FROM wellness_activities
		WHERE lower(patient_identity) = lower($1)
		ORDER BY activity_date DESC, created_at DESC
	`, patientIdentity)
	if err != nil {
		return nil, nil, fmt.Errorf("list activities: %w", err)
	}
	defer arows.Close()

	var activities []*models.Activity
	for arows.Next() {
		var a models.Activity
		if err := arows.Scan(&a.ID, &a.PatientIdentity, &a.Date, &a.Name, &a.DurationMinutes, &a.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	if err := arows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate activities: %w", err)
	}

	return entries, activities, nil
}

// Clear removes all wellness data for the patient.
func (s *PostgresStore) Clear(ctx context.Context, patientIdentity string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM wellness_entries WHERE lower(patient_identity) = lower($1)
	`, patientIdentity); err != nil {
		return fmt.Errorf("clear wellness entries: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM wellness_activities WHERE lower(patient_identity) = lower($1)
	`, patientIdentity); err != nil {
		return fmt.Errorf("clear activities: %w", err)
	}
	return nil
}
