// Package services provides business logic layer for the QC Ordinance Tracker.
// This file implements authentication services including credential validation
// and password hashing using bcrypt.
package services

import (
	"context"

	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/Marcys1903/ordinansa-sub003/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication and password management operations.
// Sits between the HTTP handlers and the user repository.
//
// Security Notes:
//   - Uses bcrypt with cost 12 for password hashing
//   - Constant-time password comparison prevents timing attacks
//   - Never stores or logs plaintext passwords
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService creates and returns a new AuthService instance.
func NewAuthService() *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(),
	}
}

// Authenticate verifies user credentials and returns the user record on success.
// Performs two-step validation: email lookup followed by password verification.
//
// Error Cases:
//   - User not found: repository error
//   - Invalid password: bcrypt.ErrMismatchedHashAndPassword
//   - Database errors: underlying database error
//
// Callers must present the same generic failure message for all of these so
// the login form does not reveal which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// bcrypt.CompareHashAndPassword performs constant-time comparison.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	return user, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
// Used when creating new users or updating passwords. The output includes the
// salt and cost factor, so it is safe to store as-is.
func (s *AuthService) HashPassword(password string) (string, error) {
	// Cost 12 provides 2^12 = 4096 iterations, balancing security and
	// performance per NIST SP 800-63B.
	const bcryptCost = 12
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}
