// Package repository implements database access layer for the QC Ordinance Tracker.
// This file handles user account management, authentication queries, and user CRUD operations.
package repository

import (
	"context"
	"fmt"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository handles user-related database operations.
// Manages user accounts, authentication lookups, and user lifecycle.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail retrieves a user by their email address.
// Used for authentication during login to validate credentials.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, first_name, last_name, role, password_hash, created_at FROM users WHERE email = $1`

	var user models.User
	err := database.DB.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.Role, &user.PasswordHash, &user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID retrieves a user by their unique ID.
// Used for session validation and authorization checks.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, email, first_name, last_name, role, password_hash, created_at FROM users WHERE id = $1`

	var user models.User
	err := database.DB.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.Role, &user.PasswordHash, &user.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ListAll retrieves all users in the system regardless of role.
// Used for the user management page; excludes password_hash.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, email, first_name, last_name, role, created_at FROM users ORDER BY created_at DESC`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

// Create inserts a new user into the database.
// Password must be pre-hashed using bcrypt before calling this method.
//
// Side Effects: populates user.ID and user.CreatedAt with database values.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (email, first_name, last_name, role, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `

	return database.DB.QueryRow(ctx, query,
		user.Email, user.FirstName, user.LastName, user.Role, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
}

// Delete removes a user from the database by ID. Hard delete; related
// event rows keep their user reference as NULL via ON DELETE SET NULL.
func (r *UserRepository) Delete(ctx context.Context, userID int) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, userID)
	return err
}
