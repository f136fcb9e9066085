// Package repository_test provides unit tests for the repository layer.
// User repository tests verify authentication lookup and account management.
package repository_test

import (
	"context"
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

// TestUserRepository_FindByEmail verifies user lookup by email address,
// the first step of the login flow.
func TestUserRepository_FindByEmail(t *testing.T) {
	testTime := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		email         string
		mockSetup     func(pgxmock.PgxPoolIface)
		expectedError bool
	}{
		{
			name:  "successful user lookup",
			email: "clerk@quezoncity.gov.ph",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "email", "first_name", "last_name", "role", "password_hash", "created_at",
				}).AddRow(2, "clerk@quezoncity.gov.ph", "Council", "Clerk", "staff", "hashed_password", testTime)

				mock.ExpectQuery("FROM users WHERE email").
					WithArgs("clerk@quezoncity.gov.ph").
					WillReturnRows(rows)
			},
		},
		{
			name:  "user not found",
			email: "nobody@quezoncity.gov.ph",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM users WHERE email").
					WithArgs("nobody@quezoncity.gov.ph").
					WillReturnError(pgx.ErrNoRows)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			oldDB := database.DB
			database.DB = mock
			defer func() { database.DB = oldDB }()

			tt.mockSetup(mock)
			repo := repository.NewUserRepository()

			user, err := repo.FindByEmail(context.Background(), tt.email)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, "Council Clerk", user.FullName())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestUserRepository_FindByID verifies user lookup by ID for session checks.
func TestUserRepository_FindByID(t *testing.T) {
	testTime := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	rows := pgxmock.NewRows([]string{
		"id", "email", "first_name", "last_name", "role", "password_hash", "created_at",
	}).AddRow(2, "clerk@quezoncity.gov.ph", "Council", "Clerk", "staff", "hash", testTime)

	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(2).
		WillReturnRows(rows)

	repo := repository.NewUserRepository()
	user, err := repo.FindByID(context.Background(), 2)

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_ListAll verifies the user management listing. The
// password hash never leaves the database for this query.
func TestUserRepository_ListAll(t *testing.T) {
	testTime := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	rows := pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "role", "created_at"}).
		AddRow(1, "admin@quezoncity.gov.ph", "System", "Administrator", "admin", testTime).
		AddRow(2, "clerk@quezoncity.gov.ph", "Council", "Clerk", "staff", testTime)

	mock.ExpectQuery("FROM users ORDER BY created_at DESC").
		WillReturnRows(rows)

	repo := repository.NewUserRepository()
	users, err := repo.ListAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_Create verifies account creation populates the
// database-generated fields. The password arrives pre-hashed.
func TestUserRepository_Create(t *testing.T) {
	testTime := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	user := &models.User{
		Email:        "new@quezoncity.gov.ph",
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Role:         "staff",
		PasswordHash: "hashed",
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("new@quezoncity.gov.ph", "Juan", "Dela Cruz", "staff", "hashed").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(9, testTime))

	repo := repository.NewUserRepository()
	err = repo.Create(context.Background(), user)

	assert.NoError(t, err)
	assert.Equal(t, 9, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_Delete verifies account removal.
func TestUserRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	oldDB := database.DB
	database.DB = mock
	defer func() { database.DB = oldDB }()

	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs(9).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := repository.NewUserRepository()
	err = repo.Delete(context.Background(), 9)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
