// Package repository_test provides unit tests for the repository layer.
// Registration repository tests verify number allocation, the race retry
// loop, the ledger, and archival.
package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectAllocation mocks one full allocation attempt. When taken is set the
// insert loses the number race (no row returned) and the attempt rolls back.
func expectAllocation(mock pgxmock.PgxPoolIface, form models.RegisterDraftForm, actorID, yearCount int, taken bool) {
	now := time.Now()
	number := fmt.Sprintf("QC-REG-ORD-%d-%02d-%04d", now.Year(), int(now.Month()), yearCount+1)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(now.Year()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(yearCount))

	insert := mock.ExpectQuery("INSERT INTO draft_registrations").
		WithArgs(form.DocumentID, form.DocumentType, number, actorID)
	if taken {
		insert.WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()
		return
	}
	insert.WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(21, now))

	mock.ExpectExec("UPDATE ordinances SET status").
		WithArgs(form.DocumentID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if form.CommitteeID > 0 {
		mock.ExpectExec("INSERT INTO document_committees").
			WithArgs(form.DocumentID, form.DocumentType, form.CommitteeID, actorID).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	mock.ExpectCommit()
}

// TestRegistrationRepository_RegisterDraft verifies the happy path: count,
// insert, status flip, committee assignment, commit.
func TestRegistrationRepository_RegisterDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	form := models.RegisterDraftForm{
		DocumentID:   7,
		DocumentType: "ordinance",
		CommitteeID:  2,
	}

	expectAllocation(mock, form, 3, 41, false)

	repo := repository.NewRegistrationRepository()
	reg, err := repo.RegisterDraft(context.Background(), form, 3)

	require.NoError(t, err)
	assert.Equal(t, 21, reg.ID)
	assert.Contains(t, reg.RegistrationNumber, "QC-REG-ORD-")
	assert.Contains(t, reg.RegistrationNumber, "-0042", "sequence is this year's count plus one")
	assert.Equal(t, 3, reg.RegisteredBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_RegisterDraft_RetriesOnRace verifies that losing
// the unique-number race rolls back and retries with a recomputed sequence.
func TestRegistrationRepository_RegisterDraft_RetriesOnRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	form := models.RegisterDraftForm{DocumentID: 7, DocumentType: "ordinance"}

	// First attempt loses the race; second sees the winner's row in the
	// count and allocates the next number.
	expectAllocation(mock, form, 3, 41, true)
	expectAllocation(mock, form, 3, 42, false)

	repo := repository.NewRegistrationRepository()
	reg, err := repo.RegisterDraft(context.Background(), form, 3)

	require.NoError(t, err)
	assert.Contains(t, reg.RegistrationNumber, "-0043")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_RegisterDraft_RetriesExhausted verifies that
// three straight lost races surface as a transaction failure.
func TestRegistrationRepository_RegisterDraft_RetriesExhausted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	form := models.RegisterDraftForm{DocumentID: 7, DocumentType: "ordinance"}

	for i := 0; i < 3; i++ {
		expectAllocation(mock, form, 3, 41, true)
	}

	repo := repository.NewRegistrationRepository()
	reg, err := repo.RegisterDraft(context.Background(), form, 3)

	assert.Nil(t, reg)
	assert.ErrorIs(t, err, repository.ErrTransactionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_RegisterDraft_UnknownType verifies input
// validation ahead of any database work.
func TestRegistrationRepository_RegisterDraft_UnknownType(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	repo := repository.NewRegistrationRepository()
	reg, err := repo.RegisterDraft(context.Background(), models.RegisterDraftForm{
		DocumentID:   7,
		DocumentType: "memo",
	}, 3)

	assert.Nil(t, reg)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_RegisterDraft_OtherErrorNoRetry verifies that a
// non-race failure aborts immediately instead of burning retries.
func TestRegistrationRepository_RegisterDraft_OtherErrorNoRetry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(time.Now().Year()).
		WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	repo := repository.NewRegistrationRepository()
	reg, err := repo.RegisterDraft(context.Background(), models.RegisterDraftForm{
		DocumentID:   7,
		DocumentType: "ordinance",
	}, 3)

	assert.Nil(t, reg)
	assert.ErrorIs(t, err, repository.ErrTransactionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_ListRegistrations verifies the ledger query and
// the archived flag argument.
func TestRegistrationRepository_ListRegistrations(t *testing.T) {
	testTime := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	rows := pgxmock.NewRows([]string{
		"id", "document_id", "document_type", "registration_number",
		"registered_by", "archived", "created_at",
		"document_number", "document_title", "registrant_name",
	}).AddRow(21, 7, "ordinance", "QC-REG-ORD-2026-08-0042", 3, false, testTime,
		"ORD-2026-0007", "Flood control measures", "Maria Santos")

	mock.ExpectQuery("FROM draft_registrations dr").
		WithArgs(false).
		WillReturnRows(rows)

	repo := repository.NewRegistrationRepository()
	regs, err := repo.ListRegistrations(context.Background(), false)

	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "QC-REG-ORD-2026-08-0042", regs[0].RegistrationNumber)
	assert.Equal(t, "Maria Santos", regs[0].RegistrantName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_GetByDocument verifies nil-without-error for an
// unregistered document.
func TestRegistrationRepository_GetByDocument_NotRegistered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	mock.ExpectQuery("FROM draft_registrations").
		WithArgs(7, "ordinance").
		WillReturnError(pgx.ErrNoRows)

	repo := repository.NewRegistrationRepository()
	reg, err := repo.GetByDocument(context.Background(), 7, "ordinance")

	assert.NoError(t, err)
	assert.Nil(t, reg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRegistrationRepository_Archive verifies the archived flag update.
func TestRegistrationRepository_Archive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	mock.ExpectExec("UPDATE draft_registrations SET archived").
		WithArgs(21).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := repository.NewRegistrationRepository()
	err = repo.Archive(context.Background(), 21)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
