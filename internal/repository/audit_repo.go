// Package repository provides data access layer for the QC Ordinance Tracker.
// This file implements the audit repository for security and compliance logging.
package repository

import (
	"context"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
)

// AuditRepository handles all database operations related to audit logging.
//
// Audit rows are append-only: they are never modified or deleted once
// created, and they feed the normalized activity view alongside the other
// event tables.
type AuditRepository struct{}

// NewAuditRepository creates and returns a new AuditRepository instance.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Log creates a new audit log entry.
// Called after every state-changing action: priority updates, draft
// registrations, notification bulk operations, user management.
//
// Side Effects:
//   - Sets log.ID to the generated audit log ID
//   - Sets log.CreatedAt to the server timestamp
func (r *AuditRepository) Log(ctx context.Context, log *models.AuditLog) error {
	query := `
        INSERT INTO audit_logs (actor_id, action, object_type, object_id, details, ip_address, user_agent)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `

	return database.DB.QueryRow(ctx, query,
		log.ActorID, log.Action, log.ObjectType, log.ObjectID,
		log.Details, log.IPAddress, log.UserAgent,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListRecent retrieves the most recent audit log entries, newest first.
// Used by the admin audit page; typical limits are 50 for the dashboard
// widget and 500 for the full view.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
        SELECT
            id, actor_id, action, object_type, object_id,
            details, ip_address, user_agent, created_at
        FROM audit_logs
        ORDER BY created_at DESC
        LIMIT $1
    `

	rows, err := database.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var log models.AuditLog

		// ActorID and ObjectID are pointers to handle NULL values.
		if err := rows.Scan(
			&log.ID,
			&log.ActorID,
			&log.Action,
			&log.ObjectType,
			&log.ObjectID,
			&log.Details,
			&log.IPAddress,
			&log.UserAgent,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, nil
}
