package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestValidation() *ValidationService {
	return NewValidationService(DefaultSecurityConfig())
}

func TestValidationService_ValidateEmail(t *testing.T) {
	v := newTestValidation()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid address", "clerk@quezoncity.gov.ph", false},
		{"empty", "", true},
		{"missing domain", "clerk@", true},
		{"missing local part", "@quezoncity.gov.ph", true},
		{"plain text", "not an email", true},
		{"too long", strings.Repeat("a", 250) + "@qc.gov", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationService_ValidatePassword(t *testing.T) {
	v := newTestValidation()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"meets all requirements", "Str0ngPass", false},
		{"empty", "", true},
		{"too short", "Ab1", true},
		{"no uppercase", "weakpass1", true},
		{"no lowercase", "WEAKPASS1", true},
		{"no number", "WeakPassword", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationService_ValidateDocumentType(t *testing.T) {
	v := newTestValidation()

	assert.NoError(t, v.ValidateDocumentType("ordinance"))
	assert.NoError(t, v.ValidateDocumentType("resolution"))
	assert.Error(t, v.ValidateDocumentType(""))
	assert.Error(t, v.ValidateDocumentType("memo"))
	assert.Error(t, v.ValidateDocumentType("Ordinance"), "discriminator is case sensitive")
}

func TestValidationService_ValidatePriority(t *testing.T) {
	v := newTestValidation()

	for _, level := range []string{"low", "medium", "high", "urgent", "emergency"} {
		assert.NoError(t, v.ValidatePriority(level), level)
	}

	assert.Error(t, v.ValidatePriority(""), "priority is required")
	assert.Error(t, v.ValidatePriority("unset"), "unset is a display state, not settable")
	assert.Error(t, v.ValidatePriority("critical"))
}

func TestValidationService_ValidateReason(t *testing.T) {
	v := newTestValidation()

	assert.NoError(t, v.ValidateReason(""), "reason is optional")
	assert.NoError(t, v.ValidateReason("Escalated for flood season"))
	assert.NoError(t, v.ValidateReason(strings.Repeat("a", v.config.MaxReasonLength)))
	assert.Error(t, v.ValidateReason(strings.Repeat("a", v.config.MaxReasonLength+1)))
}

func TestValidationService_ValidateSearchTerm(t *testing.T) {
	v := newTestValidation()

	assert.NoError(t, v.ValidateSearchTerm(""))
	assert.NoError(t, v.ValidateSearchTerm("flood control"))
	assert.Error(t, v.ValidateSearchTerm(strings.Repeat("a", v.config.MaxSearchTermLength+1)))
}

func TestValidationService_ValidateDateRange(t *testing.T) {
	v := newTestValidation()

	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"both set, ordered", "2026-08-01", "2026-08-31", false},
		{"same day", "2026-08-15", "2026-08-15", false},
		{"open start", "", "2026-08-31", false},
		{"open end", "2026-08-01", "", false},
		{"both empty", "", "", false},
		{"inverted", "2026-08-31", "2026-08-01", true},
		{"bad start format", "08/01/2026", "2026-08-31", true},
		{"bad end format", "2026-08-01", "31-08-2026", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDateRange(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationService_ValidateUserRole(t *testing.T) {
	v := newTestValidation()

	assert.NoError(t, v.ValidateUserRole("admin"))
	assert.NoError(t, v.ValidateUserRole("staff"))
	assert.Error(t, v.ValidateUserRole(""))
	assert.Error(t, v.ValidateUserRole("superuser"))
}

func TestValidationService_SanitizeString(t *testing.T) {
	v := newTestValidation()

	assert.Equal(t, "hello", v.SanitizeString("  hello  "))
	assert.Equal(t, "hello", v.SanitizeString("he\x00llo"))
	assert.Equal(t, "line1\nline2", v.SanitizeString("line1\nline2"), "newlines survive")
}

func TestValidationService_ValidateRequired(t *testing.T) {
	v := newTestValidation()

	assert.NoError(t, v.ValidateRequired("first name", "Maria"))
	assert.Error(t, v.ValidateRequired("first name", ""))
	assert.Error(t, v.ValidateRequired("first name", "   "))
}
