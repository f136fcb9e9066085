// Package repository implements database access layer for the QC Ordinance Tracker.
// This file handles draft registration: number allocation, the registration
// ledger, and archival.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/jackc/pgx/v5"
)

// registrationAttempts bounds the retry loop for number allocation.
// Each attempt recomputes the sequence inside a fresh transaction.
const registrationAttempts = 3

// RegistrationRepository handles draft registration operations.
//
// Registration numbers follow QC-REG-{ORD|RES}-{year}-{month}-{sequence},
// where sequence counts registrations in the calendar year. The number column
// carries a UNIQUE constraint; two concurrent registrations computing the
// same sequence cannot both commit, the loser retries with a fresh count.
type RegistrationRepository struct{}

// NewRegistrationRepository creates a new instance of RegistrationRepository.
func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{}
}

// documentTable maps a document type to its backing table.
// The type is validated before use so the table name never comes from input.
func documentTable(documentType string) (string, error) {
	switch documentType {
	case models.DocTypeOrdinance:
		return "ordinances", nil
	case models.DocTypeResolution:
		return "resolutions", nil
	default:
		return "", fmt.Errorf("unknown document type %q", documentType)
	}
}

// registrationPrefix returns the type code used in registration numbers.
func registrationPrefix(documentType string) string {
	if documentType == models.DocTypeResolution {
		return "RES"
	}
	return "ORD"
}

// RegisterDraft allocates a registration number for a draft document and
// moves it to pending status, all in one transaction:
//
//  1. count this year's registrations and format the candidate number,
//  2. insert the registration (ON CONFLICT DO NOTHING against the unique
//     number constraint),
//  3. update the document status draft -> pending,
//  4. insert the optional committee assignment.
//
// When the insert loses a concurrent allocation race the transaction is
// rolled back and the whole sequence retried with a recomputed count, up to
// registrationAttempts times. Exhausting the retries, or any other failure,
// returns ErrTransactionFailed with nothing committed.
func (r *RegistrationRepository) RegisterDraft(ctx context.Context, form models.RegisterDraftForm, actorID int) (*models.DraftRegistration, error) {
	table, err := documentTable(form.DocumentType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var lastErr error

	for attempt := 0; attempt < registrationAttempts; attempt++ {
		reg, err := r.registerOnce(ctx, form, actorID, table, now)
		if err == nil {
			return reg, nil
		}
		if !errors.Is(err, errNumberTaken) {
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: registration number allocation retries exhausted: %v", ErrTransactionFailed, lastErr)
}

// errNumberTaken signals a lost allocation race; only RegisterDraft retries it.
var errNumberTaken = errors.New("registration number already taken")

// registerOnce runs one allocation attempt in its own transaction.
func (r *RegistrationRepository) registerOnce(ctx context.Context, form models.RegisterDraftForm, actorID int, table string, now time.Time) (*models.DraftRegistration, error) {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Sequence = registrations already recorded this calendar year + 1.
	var count int
	err = tx.QueryRow(ctx, `
        SELECT COUNT(*) FROM draft_registrations
        WHERE date_part('year', created_at) = $1
    `, now.Year()).Scan(&count)
	if err != nil {
		return nil, err
	}

	number := fmt.Sprintf("QC-REG-%s-%d-%02d-%04d",
		registrationPrefix(form.DocumentType), now.Year(), int(now.Month()), count+1)

	reg := &models.DraftRegistration{
		DocumentID:         form.DocumentID,
		DocumentType:       form.DocumentType,
		RegistrationNumber: number,
		RegisteredBy:       actorID,
	}

	// The unique constraint on registration_number is the arbiter: a
	// concurrent allocation of the same number makes this return no row.
	err = tx.QueryRow(ctx, `
        INSERT INTO draft_registrations (document_id, document_type, registration_number, registered_by)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (registration_number) DO NOTHING
        RETURNING id, created_at
    `, form.DocumentID, form.DocumentType, number, actorID).
		Scan(&reg.ID, &reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNumberTaken
	}
	if err != nil {
		return nil, err
	}

	// Registered drafts move to pending.
	_, err = tx.Exec(ctx, `
        UPDATE `+table+` SET status = 'pending', updated_at = NOW()
        WHERE id = $1 AND status = 'draft'
    `, form.DocumentID)
	if err != nil {
		return nil, err
	}

	// Optional initial committee assignment.
	if form.CommitteeID > 0 {
		_, err = tx.Exec(ctx, `
            INSERT INTO document_committees (document_id, document_type, committee_id, review_status, assigned_by)
            VALUES ($1, $2, $3, 'pending', $4)
        `, form.DocumentID, form.DocumentType, form.CommitteeID, actorID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return reg, nil
}

// ListRegistrations retrieves the registration ledger with document and
// registrant details, newest first. Archived entries are included only when
// includeArchived is set.
func (r *RegistrationRepository) ListRegistrations(ctx context.Context, includeArchived bool) ([]models.RegistrationView, error) {
	query := `
        SELECT
            dr.id, dr.document_id, dr.document_type, dr.registration_number,
            dr.registered_by, dr.archived, dr.created_at,
            COALESCE(o.number, r.number, '') AS document_number,
            COALESCE(o.title, r.title, '') AS document_title,
            u.first_name || ' ' || u.last_name AS registrant_name
        FROM draft_registrations dr
        LEFT JOIN ordinances o ON dr.document_type = 'ordinance' AND o.id = dr.document_id
        LEFT JOIN resolutions r ON dr.document_type = 'resolution' AND r.id = dr.document_id
        JOIN users u ON u.id = dr.registered_by
        WHERE dr.archived = false OR $1
        ORDER BY dr.created_at DESC
    `

	rows, err := database.DB.Query(ctx, query, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.RegistrationView
	for rows.Next() {
		var v models.RegistrationView
		if err := rows.Scan(
			&v.ID, &v.DocumentID, &v.DocumentType, &v.RegistrationNumber,
			&v.RegisteredBy, &v.Archived, &v.CreatedAt,
			&v.DocumentNumber, &v.DocumentTitle, &v.RegistrantName,
		); err != nil {
			return nil, err
		}
		regs = append(regs, v)
	}

	return regs, nil
}

// GetByDocument retrieves the registration for one document.
// Returns nil without error when the document was never registered.
func (r *RegistrationRepository) GetByDocument(ctx context.Context, documentID int, documentType string) (*models.DraftRegistration, error) {
	query := `
        SELECT id, document_id, document_type, registration_number, registered_by, archived, created_at
        FROM draft_registrations
        WHERE document_id = $1 AND document_type = $2
    `

	var reg models.DraftRegistration
	err := database.DB.QueryRow(ctx, query, documentID, documentType).Scan(
		&reg.ID, &reg.DocumentID, &reg.DocumentType, &reg.RegistrationNumber,
		&reg.RegisteredBy, &reg.Archived, &reg.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &reg, nil
}

// Archive marks a registration as archived. Idempotent.
func (r *RegistrationRepository) Archive(ctx context.Context, registrationID int) error {
	query := `UPDATE draft_registrations SET archived = true WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, registrationID)
	return err
}
