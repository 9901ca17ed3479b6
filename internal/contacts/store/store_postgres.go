package store

import (
	"context"
	"database/sql"
	"fmt"

	"healthstack/internal/contacts/models"
	"healthstack/pkg/platform/sentinel"
)

// PostgresStore persists contact lists in PostgreSQL.
// This store is pure I/O; duplicate checks and removal policy belong in the
// service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed contact list store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, patientIdentity string) (*models.ContactList, error) {
	list := &models.ContactList{PatientIdentity: patientIdentity}

	err := s.db.QueryRowContext(ctx, `
		SELECT patient_identity, created_at
		FROM contact_lists
		WHERE lower(patient_identity) = lower($1)
	`, patientIdentity).Scan(&list.PatientIdentity, &list.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("contact list for %s: %w", patientIdentity, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get contact list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT contact_identity
		FROM contact_list_entries
		WHERE lower(patient_identity) = lower($1)
		ORDER BY position
	`, patientIdentity)
	if err != nil {
		return nil, fmt.Errorf("list contact entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.Identity); err != nil {
			return nil, fmt.Errorf("scan contact entry: %w", err)
		}
		list.Contacts = append(list.Contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact entries: %w", err)
	}
	return list, nil
}

func (s *PostgresStore) Create(ctx context.Context, list *models.ContactList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create contact list: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contact_lists (patient_identity, created_at)
		VALUES ($1, now())
	`, list.PatientIdentity)
	if err != nil {
		return fmt.Errorf("insert contact list: %w", err)
	}

	if err := insertEntries(ctx, tx, list); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create contact list: %w", err)
	}
	return nil
}

func (s *PostgresStore) Replace(ctx context.Context, list *models.ContactList) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace contact list: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM contact_lists WHERE lower(patient_identity) = lower($1)
		)
	`, list.PatientIdentity).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check contact list: %w", err)
	}
	if !exists {
		return fmt.Errorf("contact list for %s: %w", list.PatientIdentity, sentinel.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM contact_list_entries WHERE lower(patient_identity) = lower($1)
	`, list.PatientIdentity)
	if err != nil {
		return fmt.Errorf("clear contact entries: %w", err)
	}

	if err := insertEntries(ctx, tx, list); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace contact list: %w", err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, list *models.ContactList) error {
	for i, c := range list.Contacts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contact_list_entries (patient_identity, contact_identity, position)
			VALUES ($1, $2, $3)
		`, list.PatientIdentity, c.Identity, i)
		if err != nil {
			return fmt.Errorf("insert contact entry: %w", err)
		}
	}
	return nil
}
