// Package security provides centralized security configuration and utilities
// for the QC Ordinance Tracker.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
// These values are tuned based on OWASP ASVS and NIST guidelines.
type SecurityConfig struct {
	// Password storage
	BcryptCost int // Cost factor for bcrypt hashing (recommended: 12)

	// Session management
	SessionTimeout    time.Duration // Session inactivity timeout
	SessionCookieName string        // Name of session cookie
	SessionSecure     bool          // Require HTTPS for session cookies
	SessionHTTPOnly   bool          // Prevent JavaScript access to session cookies
	SessionSameSite   string        // CSRF protection via SameSite attribute

	// Brute force protection
	LoginRateLimit          int           // Max login attempts per minute per IP
	AccountLockoutThreshold int           // Failed attempts before account lockout
	AccountLockoutDuration  time.Duration // How long account stays locked

	// Input validation
	MaxReasonLength     int // Maximum characters in a priority change reason
	MaxSearchTermLength int // Maximum characters in a document search term
	MaxMessageLength    int // Maximum characters in a notification message
	QueryTimeout        time.Duration

	// Rate limiting (requests per time window)
	RateLimitLogin        int // Login endpoint
	RateLimitPriority     int // Priority update endpoint
	RateLimitRegistration int // Draft registration endpoint
	RateLimitNotification int // Notification bulk operations

	// Security monitoring
	MonitoringInterval     time.Duration // How often failure counters are reset
	AlertThresholdFailures int           // Failed logins before alerting
	AlertThresholdBulk     int           // Bulk notification rows before alerting
}

// DefaultSecurityConfig returns security configuration with recommended defaults.
// These values comply with OWASP ASVS 4.0 and NIST SP 800-53 guidelines.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		// Bcrypt cost 12 = 2^12 = 4096 iterations
		BcryptCost: 12,

		// Session configuration
		SessionTimeout:    8 * time.Hour,
		SessionCookieName: "ordinansa_session",
		SessionSecure:     true,     // Requires HTTPS
		SessionHTTPOnly:   true,     // No JavaScript access
		SessionSameSite:   "Strict", // Strong CSRF protection

		// Brute force protection
		LoginRateLimit:          5,
		AccountLockoutThreshold: 10,
		AccountLockoutDuration:  30 * time.Minute,

		// Input validation limits
		MaxReasonLength:     500,
		MaxSearchTermLength: 100,
		MaxMessageLength:    1000,
		QueryTimeout:        30 * time.Second,

		// Rate limits
		RateLimitLogin:        5,  // per minute per IP
		RateLimitPriority:     30, // per minute per user
		RateLimitRegistration: 10, // per minute per user
		RateLimitNotification: 20, // per minute per user

		// Security monitoring
		MonitoringInterval:     5 * time.Minute,
		AlertThresholdFailures: 5,
		AlertThresholdBulk:     1000, // Bulk operations touching >1000 rows trigger alert
	}
}
