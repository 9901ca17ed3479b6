//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"healthstack/internal/contacts/models"
	"healthstack/internal/contacts/store"
	"healthstack/pkg/platform/sentinel"
	"healthstack/pkg/testutil/containers"
)

const contactsSchema = `
CREATE TABLE IF NOT EXISTS contact_lists (
    patient_identity TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS contact_list_entries (
    patient_identity TEXT NOT NULL REFERENCES contact_lists (patient_identity) ON DELETE CASCADE,
    contact_identity TEXT NOT NULL,
    position INT NOT NULL,
    PRIMARY KEY (patient_identity, position)
);`

type PostgresContactStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresContactStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresContactStoreSuite))
}

func (s *PostgresContactStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.postgres.ApplySchema(context.Background(), contactsSchema))
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresContactStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "contact_list_entries", "contact_lists")
	s.Require().NoError(err)
}

func (s *PostgresContactStoreSuite) TestGetMissingIsNotFound() {
	_, err := s.store.Get(context.Background(), "nobody@example.com")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresContactStoreSuite) TestCreateAndGetPreservesOrder() {
	ctx := context.Background()
	list := &models.ContactList{
		PatientIdentity: "pat@example.com",
		Contacts: []models.Contact{
			{Identity: "zeta@example.com"},
			{Identity: "alpha@example.com"},
			{Identity: "mid@example.com"},
		},
	}
	s.Require().NoError(s.store.Create(ctx, list))

	got, err := s.store.Get(ctx, "PAT@example.com")
	s.Require().NoError(err)
	s.Equal([]string{"zeta@example.com", "alpha@example.com", "mid@example.com"}, got.Identities())
}

func (s *PostgresContactStoreSuite) TestReplaceRewritesEntries() {
	ctx := context.Background()
	list := &models.ContactList{
		PatientIdentity: "pat@example.com",
		Contacts:        []models.Contact{{Identity: "old@example.com"}},
	}
	s.Require().NoError(s.store.Create(ctx, list))

	list.Contacts = []models.Contact{{Identity: "new@example.com"}}
	s.Require().NoError(s.store.Replace(ctx, list))

	got, err := s.store.Get(ctx, "pat@example.com")
	s.Require().NoError(err)
	s.Equal([]string{"new@example.com"}, got.Identities())
}

func (s *PostgresContactStoreSuite) TestEmptiedListSurvives() {
	ctx := context.Background()
	list := &models.ContactList{
		PatientIdentity: "pat@example.com",
		Contacts:        []models.Contact{{Identity: "helper@example.com"}},
	}
	s.Require().NoError(s.store.Create(ctx, list))

	list.Contacts = nil
	s.Require().NoError(s.store.Replace(ctx, list))

	got, err := s.store.Get(ctx, "pat@example.com")
	s.Require().NoError(err)
	s.Empty(got.Identities())
}

func (s *PostgresContactStoreSuite) TestReplaceMissingIsNotFound() {
	err := s.store.Replace(context.Background(), &models.ContactList{
		PatientIdentity: "nobody@example.com",
	})
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
