// Package repository implements database access layer for the QC Ordinance Tracker.
// This file handles document priority classification: the current
// classification record, its transition history, and the priority worklist.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
	"github.com/jackc/pgx/v5"
)

// ClassificationRepository handles priority classification operations.
//
// Invariant: every priority change produces exactly one history row capturing
// the previous and new value. SetPriority enforces this by running the upsert
// and the history insert in a single transaction.
type ClassificationRepository struct{}

// NewClassificationRepository creates a new instance of ClassificationRepository.
func NewClassificationRepository() *ClassificationRepository {
	return &ClassificationRepository{}
}

// DocumentFilter holds the optional filters for the priority worklist.
type DocumentFilter struct {
	DocumentType string // "all", "ordinance", or "resolution"
	Status       string // "all" or a document status
	Priority     string // "all" or a priority level; "unset" matches unclassified
	Search       string // Substring match on title and number
}

// SetPriority updates a document's classification and records the transition.
//
// The sequence is atomic: read the current priority (locking the row when
// present), upsert the classification record, and append one history row.
// Any failure rolls back both writes and returns ErrTransactionFailed.
//
// No-op transitions (new priority equal to the current one) still create a
// history row; callers that want to suppress them must check first.
func (r *ClassificationRepository) SetPriority(ctx context.Context, form models.PriorityForm, actorID int) (*models.PriorityHistory, error) {
	tx, err := database.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	// Rollback is a no-op once the transaction commits.
	defer tx.Rollback(ctx)

	// Read the current priority. FOR UPDATE serializes concurrent transitions
	// against the same document; absence means this is the first classification.
	var previous *string
	var current string
	err = tx.QueryRow(ctx, `
        SELECT priority_level FROM document_classification
        WHERE document_id = $1 AND document_type = $2
        FOR UPDATE
    `, form.DocumentID, form.DocumentType).Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		previous = nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	default:
		previous = &current
	}

	// Upsert the current classification record.
	_, err = tx.Exec(ctx, `
        INSERT INTO document_classification (document_id, document_type, priority_level, category, updated_by, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (document_id, document_type) DO UPDATE
        SET priority_level = EXCLUDED.priority_level,
            category = EXCLUDED.category,
            updated_by = EXCLUDED.updated_by,
            updated_at = NOW()
    `, form.DocumentID, form.DocumentType, form.Priority, form.Category, actorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	// Append exactly one history row for this transition.
	history := &models.PriorityHistory{
		DocumentID:       form.DocumentID,
		DocumentType:     form.DocumentType,
		PreviousPriority: previous,
		NewPriority:      form.Priority,
		Reason:           form.Reason,
		ChangedBy:        actorID,
	}
	err = tx.QueryRow(ctx, `
        INSERT INTO document_priority_history (document_id, document_type, previous_priority, new_priority, reason, changed_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `, form.DocumentID, form.DocumentType, previous, form.Priority, form.Reason, actorID).
		Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return history, nil
}

// GetClassification retrieves the current classification for one document.
// Returns nil without error when the document has never been classified.
func (r *ClassificationRepository) GetClassification(ctx context.Context, documentID int, documentType string) (*models.DocumentClassification, error) {
	query := `
        SELECT id, document_id, document_type, priority_level, category, updated_by, updated_at
        FROM document_classification
        WHERE document_id = $1 AND document_type = $2
    `

	var dc models.DocumentClassification
	err := database.DB.QueryRow(ctx, query, documentID, documentType).Scan(
		&dc.ID, &dc.DocumentID, &dc.DocumentType,
		&dc.PriorityLevel, &dc.Category, &dc.UpdatedBy, &dc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &dc, nil
}

// ListHistory retrieves the priority transition history for one document,
// newest first.
func (r *ClassificationRepository) ListHistory(ctx context.Context, documentID int, documentType string) ([]models.PriorityHistory, error) {
	query := `
        SELECT id, document_id, document_type, previous_priority, new_priority, reason, changed_by, created_at
        FROM document_priority_history
        WHERE document_id = $1 AND document_type = $2
        ORDER BY created_at DESC
    `

	rows, err := database.DB.Query(ctx, query, documentID, documentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.PriorityHistory
	for rows.Next() {
		var h models.PriorityHistory
		if err := rows.Scan(
			&h.ID, &h.DocumentID, &h.DocumentType,
			&h.PreviousPriority, &h.NewPriority, &h.Reason, &h.ChangedBy, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	return history, nil
}

// ListDocuments retrieves the priority worklist: both document tables unified
// with their current classification, filtered and ordered by severity rank
// (display order only, no workflow gating).
func (r *ClassificationRepository) ListDocuments(ctx context.Context, f DocumentFilter) ([]models.DocumentPriorityView, error) {
	base := `
        SELECT o.id, 'ordinance' AS document_type, o.number, o.title, o.status,
            o.created_by, o.created_at, o.updated_at,
            COALESCE(dc.priority_level, 'unset') AS priority_level,
            COALESCE(dc.category, '') AS category
        FROM ordinances o
        LEFT JOIN document_classification dc
            ON dc.document_type = 'ordinance' AND dc.document_id = o.id
        UNION ALL
        SELECT r.id, 'resolution', r.number, r.title, r.status,
            r.created_by, r.created_at, r.updated_at,
            COALESCE(dc.priority_level, 'unset'),
            COALESCE(dc.category, '')
        FROM resolutions r
        LEFT JOIN document_classification dc
            ON dc.document_type = 'resolution' AND dc.document_id = r.id`

	var conds []string
	var args []interface{}
	if f.DocumentType != "" && f.DocumentType != "all" {
		args = append(args, f.DocumentType)
		conds = append(conds, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" && f.Priority != "all" {
		args = append(args, f.Priority)
		conds = append(conds, fmt.Sprintf("priority_level = $%d", len(args)))
	}
	if strings.TrimSpace(f.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(f.Search)+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR number ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT id, document_type, number, title, status, created_by, created_at, updated_at, priority_level, category
        FROM (` + base + `
        ) docs` + whereClause(conds) + `
        ORDER BY CASE priority_level
            WHEN 'emergency' THEN 5
            WHEN 'urgent' THEN 4
            WHEN 'high' THEN 3
            WHEN 'medium' THEN 2
            WHEN 'low' THEN 1
            ELSE 0
        END DESC, updated_at DESC`

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.DocumentPriorityView
	for rows.Next() {
		var d models.DocumentPriorityView
		if err := rows.Scan(
			&d.ID, &d.DocumentType, &d.Number, &d.Title, &d.Status,
			&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
			&d.PriorityLevel, &d.Category,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	return docs, nil
}
