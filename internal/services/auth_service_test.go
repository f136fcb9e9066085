// Package services_test provides unit tests for the services layer.
// Tests validate business logic without requiring database connections.
package services_test

import (
	"testing"

	"github.com/Marcys1903/ordinansa-sub003/internal/services"
	"golang.org/x/crypto/bcrypt"
)

// TestAuthService_HashPassword verifies bcrypt password hashing functionality.
//
// Security Requirements Tested:
//   - Password hashing produces non-empty output
//   - Hash differs from plaintext (one-way function)
//   - Hash verifies against the original password
func TestAuthService_HashPassword(t *testing.T) {
	service := services.NewAuthService()

	hash, err := service.HashPassword("testpassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	if hash == "testpassword" {
		t.Error("Hash should not equal plaintext password")
	}

	// The hash must verify against the original password.
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("testpassword")); err != nil {
		t.Errorf("Hash should verify against original password: %v", err)
	}

	// And must not verify against a different password.
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrongpassword")); err == nil {
		t.Error("Hash should not verify against a different password")
	}
}

// TestAuthService_HashPassword_UniqueSalts verifies two hashes of the same
// password differ, confirming per-hash random salts.
func TestAuthService_HashPassword_UniqueSalts(t *testing.T) {
	service := services.NewAuthService()

	hash1, err := service.HashPassword("testpassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	hash2, err := service.HashPassword("testpassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Two hashes of the same password should differ")
	}
}
