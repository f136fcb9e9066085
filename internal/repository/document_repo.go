// Package repository implements database access layer for the QC Ordinance Tracker.
// This file provides unified document reads over the parallel ordinances and
// resolutions tables.
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

// DocumentRepository handles document-related database operations.
// Documents are polymorphic over ordinances and resolutions; every lookup
// takes the (id, document_type) pair since ids are not unique across tables.
type DocumentRepository struct{}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{}
}

// Get retrieves one document by identity pair.
func (r *DocumentRepository) Get(ctx context.Context, documentID int, documentType string) (*models.Document, error) {
	table, err := documentTable(documentType)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, number, title, status, created_by, created_at, updated_at FROM ` + table + ` WHERE id = $1`

	doc := models.Document{DocumentType: documentType}
	err = database.DB.QueryRow(ctx, query, documentID).Scan(
		&doc.ID, &doc.Number, &doc.Title, &doc.Status,
		&doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document not found")
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// ListByStatus retrieves documents of both types in the given status,
// newest first. Used by the registration page to list unregistered drafts.
func (r *DocumentRepository) ListByStatus(ctx context.Context, status string) ([]models.Document, error) {
	query := `
        SELECT id, document_type, number, title, status, created_by, created_at, updated_at
        FROM (
            SELECT o.id, 'ordinance' AS document_type, o.number, o.title, o.status,
                o.created_by, o.created_at, o.updated_at
            FROM ordinances o
            UNION ALL
            SELECT r.id, 'resolution', r.number, r.title, r.status,
                r.created_by, r.created_at, r.updated_at
            FROM resolutions r
        ) docs
        WHERE status = $1
        ORDER BY created_at DESC
    `

	rows, err := database.DB.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Search retrieves documents of both types whose title or number matches the
// given substring, newest first.
func (r *DocumentRepository) Search(ctx context.Context, term string) ([]models.Document, error) {
	pattern := "%" + strings.TrimSpace(term) + "%"

	query := `
        SELECT id, document_type, number, title, status, created_by, created_at, updated_at
        FROM (
            SELECT o.id, 'ordinance' AS document_type, o.number, o.title, o.status,
                o.created_by, o.created_at, o.updated_at
            FROM ordinances o
            UNION ALL
            SELECT r.id, 'resolution', r.number, r.title, r.status,
                r.created_by, r.created_at, r.updated_at
            FROM resolutions r
        ) docs
        WHERE title ILIKE $1 OR number ILIKE $1
        ORDER BY created_at DESC
    `

	rows, err := database.DB.Query(ctx, query, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// scanDocuments collects unified document rows.
func scanDocuments(rows pgx.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.DocumentType, &d.Number, &d.Title, &d.Status,
			&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}
