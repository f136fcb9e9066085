// Package models defines the domain entities and data transfer objects for the
// QC Ordinance Tracker. It includes database models mapped to PostgreSQL tables,
// form DTOs for user input, and view models for template rendering.
package models

import "time"

// ============================================================================
// Document Types and Statuses
// ============================================================================

// Document type discriminants. Ordinances and resolutions live in parallel
// tables with non-unique ids, so document identity is always the pair
// (ID, DocumentType).
const (
	DocTypeOrdinance  = "ordinance"
	DocTypeResolution = "resolution"
)

// Document status lifecycle values.
const (
	StatusDraft       = "draft"
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusImplemented = "implemented"
)

// Priority levels for document classification.
// The ordering below is display severity only; no workflow gating depends on it.
const (
	PriorityUnset     = "unset"
	PriorityLow       = "low"
	PriorityMedium    = "medium"
	PriorityHigh      = "high"
	PriorityUrgent    = "urgent"
	PriorityEmergency = "emergency"
)

// PriorityRank maps a priority level to its severity rank for display sorting.
// Higher means more severe.
var PriorityRank = map[string]int{
	PriorityUnset:     0,
	PriorityLow:       1,
	PriorityMedium:    2,
	PriorityHigh:      3,
	PriorityUrgent:    4,
	PriorityEmergency: 5,
}

// ValidPriority reports whether level is a recognized priority value.
func ValidPriority(level string) bool {
	_, ok := PriorityRank[level]
	return ok
}

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a system user account with role-based access control.
// Users are either administrators (full access) or staff (limited access).
//
// Database Table: users
// Security Note: PasswordHash must never be exposed in responses or logs
type User struct {
	ID           int       `db:"id"`            // Primary key, auto-increment
	Email        string    `db:"email"`         // Unique, used for login
	FirstName    string    `db:"first_name"`    // Given name
	LastName     string    `db:"last_name"`     // Family name
	Role         string    `db:"role"`          // "admin" or "staff"
	PasswordHash string    `db:"password_hash"` // bcrypt hashed password
	CreatedAt    time.Time `db:"created_at"`    // Account creation timestamp
}

// FullName formats a user's display name for templates and reports.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Document is the unified read model over the ordinances and resolutions
// tables. DocumentType carries the discriminant; ID alone is not a key.
type Document struct {
	ID           int       `db:"id"`            // Primary key within its own table
	DocumentType string    `db:"document_type"` // "ordinance" or "resolution"
	Number       string    `db:"number"`        // Formatted reference string
	Title        string    `db:"title"`
	Status       string    `db:"status"`     // draft/pending/approved/implemented
	CreatedBy    int       `db:"created_by"` // Foreign key to users.id
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// DocumentClassification holds the current priority and category for one
// document. One row per (document_id, document_type); every mutation must be
// paired with exactly one PriorityHistory row.
//
// Database Table: document_classification
type DocumentClassification struct {
	ID            int       `db:"id"`
	DocumentID    int       `db:"document_id"`
	DocumentType  string    `db:"document_type"`
	PriorityLevel string    `db:"priority_level"`
	Category      string    `db:"category"`
	UpdatedBy     int       `db:"updated_by"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// PriorityHistory is an append-only record of one priority transition.
// PreviousPriority is nil for the first classification of a document.
//
// Database Table: document_priority_history
type PriorityHistory struct {
	ID               int       `db:"id"`
	DocumentID       int       `db:"document_id"`
	DocumentType     string    `db:"document_type"`
	PreviousPriority *string   `db:"previous_priority"` // Nullable on first transition
	NewPriority      string    `db:"new_priority"`
	Reason           string    `db:"reason"`
	ChangedBy        int       `db:"changed_by"`
	CreatedAt        time.Time `db:"created_at"`
}

// DraftRegistration records the one-time registration of a draft document.
// RegistrationNumber is unique (enforced by the database) and of the form
// QC-REG-{ORD|RES}-{year}-{month}-{sequence}.
//
// Database Table: draft_registrations
type DraftRegistration struct {
	ID                 int       `db:"id"`
	DocumentID         int       `db:"document_id"`
	DocumentType       string    `db:"document_type"`
	RegistrationNumber string    `db:"registration_number"`
	RegisteredBy       int       `db:"registered_by"`
	Archived           bool      `db:"archived"`
	CreatedAt          time.Time `db:"created_at"`
}

// Notification belongs to one user and optionally references a document or
// committee. Lifecycle: created -> optionally marked read -> optionally hard
// deleted. There is no read -> unread transition.
//
// Database Table: notifications
type Notification struct {
	ID           int        `db:"id"`
	UserID       int        `db:"user_id"`
	Type         string     `db:"notif_type"` // e.g. "registration", "priority_change"
	Priority     string     `db:"priority"`   // low/medium/high/urgent
	Title        string     `db:"title"`
	Message      string     `db:"message"`
	DocumentID   *int       `db:"document_id"`   // Nullable document reference
	DocumentType *string    `db:"document_type"` // Set iff DocumentID is set
	CommitteeID  *int       `db:"committee_id"`  // Nullable committee reference
	IsRead       bool       `db:"is_read"`
	ReadAt       *time.Time `db:"read_at"` // Set when marked read
	CreatedAt    time.Time  `db:"created_at"`
	ExpiresAt    *time.Time `db:"expires_at"` // Nullable expiry
}

// Committee is a reference entity for council committees.
//
// Database Table: committees
type Committee struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// CommitteeAssignment links a document to a committee with a review status.
//
// Database Table: document_committees
// Review Status Values: "pending", "in_review", "endorsed", "returned"
type CommitteeAssignment struct {
	ID           int       `db:"id"`
	DocumentID   int       `db:"document_id"`
	DocumentType string    `db:"document_type"`
	CommitteeID  int       `db:"committee_id"`
	ReviewStatus string    `db:"review_status"`
	AssignedBy   int       `db:"assigned_by"`
	CreatedAt    time.Time `db:"created_at"`
}

// AuditLog represents an audit trail entry for compliance and security
// monitoring. Entries are append-only and never modified or deleted.
//
// Database Table: audit_logs
type AuditLog struct {
	ID         int       // Primary key
	ActorID    *int      // User who performed the action (nullable for system actions)
	Action     string    // Action type (e.g., "REGISTER_DRAFT", "UPDATE_PRIORITY")
	ObjectType string    // Type of object affected ("ordinance", "resolution", "user")
	ObjectID   *int      // ID of affected object (nullable)
	Details    string    // Free-form action description
	IPAddress  string    // Source IP address
	UserAgent  string    // Browser/client identifier
	CreatedAt  time.Time // When action occurred
}

// KPI is a reporting entity with target vs. current numeric values.
//
// Database Table: progress_kpis
type KPI struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	TargetValue  float64   `db:"target_value"`
	CurrentValue float64   `db:"current_value"`
	Unit         string    `db:"unit"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Milestone is a reporting entity with expected vs. actual dates.
//
// Database Table: progress_milestones
// Status Values: "pending", "in_progress", "done"
type Milestone struct {
	ID           int        `db:"id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	ExpectedDate time.Time  `db:"expected_date"`
	ActualDate   *time.Time `db:"actual_date"` // Nullable until reached
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
}

// ============================================================================
// Data Transfer Objects (DTOs) - Form Input
// ============================================================================

// LoginForm represents user login credentials from the login form.
type LoginForm struct {
	Email    string // User's email address
	Password string // Plain-text password (verified against bcrypt hash)
}

// PriorityForm represents data from the priority update form.
// Used by administrators to classify documents.
type PriorityForm struct {
	DocumentID   int    // Target document
	DocumentType string // "ordinance" or "resolution"
	Priority     string // New priority level
	Category     string // Classification category
	Reason       string // Why the priority changed
}

// RegisterDraftForm represents data from the draft registration form.
type RegisterDraftForm struct {
	DocumentID   int    // Draft document to register
	DocumentType string // "ordinance" or "resolution"
	CommitteeID  int    // Optional committee to assign (0 = none)
}

// CreateUserForm represents data from the admin user creation form.
type CreateUserForm struct {
	Email     string
	FirstName string
	LastName  string
	Role      string // "admin" or "staff"
	Password  string // Plain text, hashed before storage
}

// ============================================================================
// View Models - Template Rendering
// ============================================================================

// DocumentPriorityView is an enriched document row for the priority worklist.
// Combines document fields with its current classification (if any).
type DocumentPriorityView struct {
	Document
	PriorityLevel string // Current priority, "unset" when unclassified
	Category      string // Current category, empty when unclassified
}

// RegistrationView is an enriched registration row for the registrations page.
type RegistrationView struct {
	DraftRegistration
	DocumentNumber string // Reference number of the registered document
	DocumentTitle  string // Title of the registered document
	RegistrantName string // Full name of the registering user
}

// CommitteeView extends Committee with counts for list displays.
type CommitteeView struct {
	Committee
	MemberCount   int // Users sitting on this committee
	DocumentCount int // Documents currently assigned
}
