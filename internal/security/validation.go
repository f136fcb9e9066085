// Package security provides input validation functionality.
// All validation methods return descriptive errors that are safe to show to users.
package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationService provides centralized input validation functions.
type ValidationService struct {
	config *SecurityConfig
}

// NewValidationService creates a new validation service with security configuration.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{
		config: config,
	}
}

// ValidateEmail validates email address format according to RFC 5322.
// Returns error if email is invalid or too long.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > 255 {
		return fmt.Errorf("email must be less than 255 characters")
	}

	// Use Go's standard mail.ParseAddress for RFC 5322 compliance
	_, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword validates password meets minimum security requirements.
// Requirements: At least 8 characters, contains uppercase, lowercase, and number.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}

	// Check for required character types
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}

	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidateDocumentType validates the polymorphic document type discriminator.
func (v *ValidationService) ValidateDocumentType(documentType string) error {
	if documentType == "" {
		return fmt.Errorf("document type is required")
	}

	if documentType != "ordinance" && documentType != "resolution" {
		return fmt.Errorf("invalid document type (must be 'ordinance' or 'resolution')")
	}

	return nil
}

// ValidatePriority validates a priority level against the allowed ladder.
// The zero state is "unset"; it is not settable through the form.
func (v *ValidationService) ValidatePriority(priority string) error {
	if priority == "" {
		return fmt.Errorf("priority is required")
	}

	allowed := map[string]bool{
		"low":       true,
		"medium":    true,
		"high":      true,
		"urgent":    true,
		"emergency": true,
	}

	if !allowed[priority] {
		return fmt.Errorf("invalid priority level")
	}

	return nil
}

// ValidateReason validates a priority change reason.
// The reason is optional but length-limited when present.
func (v *ValidationService) ValidateReason(reason string) error {
	if utf8.RuneCountInString(reason) > v.config.MaxReasonLength {
		return fmt.Errorf("reason must be %d characters or less", v.config.MaxReasonLength)
	}

	return nil
}

// ValidateSearchTerm validates a document search term length.
func (v *ValidationService) ValidateSearchTerm(term string) error {
	if utf8.RuneCountInString(term) > v.config.MaxSearchTermLength {
		return fmt.Errorf("search term must be %d characters or less", v.config.MaxSearchTermLength)
	}

	return nil
}

// ValidateDate validates date string format (ISO 8601).
// Expected format: "2025-01-15", "2025-12-31"
func (v *ValidationService) ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is required")
	}

	// Parse as ISO 8601 date
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format (expected: YYYY-MM-DD)")
	}

	return nil
}

// ValidateDateRange validates that start date is before end date.
// Either bound may be empty; an open-ended range is valid.
func (v *ValidationService) ValidateDateRange(start, end string) error {
	if start != "" {
		if err := v.ValidateDate(start); err != nil {
			return fmt.Errorf("start date: %w", err)
		}
	}

	if end != "" {
		if err := v.ValidateDate(end); err != nil {
			return fmt.Errorf("end date: %w", err)
		}
	}

	if start != "" && end != "" {
		startTime, _ := time.Parse("2006-01-02", start)
		endTime, _ := time.Parse("2006-01-02", end)

		if endTime.Before(startTime) {
			return fmt.Errorf("start date must be before end date")
		}
	}

	return nil
}

// ValidateUserRole validates user role is one of the allowed values.
func (v *ValidationService) ValidateUserRole(role string) error {
	if role == "" {
		return fmt.Errorf("role is required")
	}

	allowedRoles := map[string]bool{
		"admin": true,
		"staff": true,
	}

	if !allowedRoles[role] {
		return fmt.Errorf("invalid role (must be 'admin' or 'staff')")
	}

	return nil
}

// SanitizeString removes potentially dangerous characters from string input.
// Removes control characters and normalizes whitespace.
func (v *ValidationService) SanitizeString(input string) string {
	// Remove control characters (except newline and tab)
	input = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`).ReplaceAllString(input, "")

	// Normalize whitespace
	input = strings.TrimSpace(input)

	return input
}

// ValidateRequired checks if a required field is present and non-empty.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	return nil
}

// ValidateLength validates string length is within bounds.
func (v *ValidationService) ValidateLength(fieldName string, value string, min, max int) error {
	length := utf8.RuneCountInString(value)

	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}

	if length > max {
		return fmt.Errorf("%s must be %d characters or less", fieldName, max)
	}

	return nil
}
