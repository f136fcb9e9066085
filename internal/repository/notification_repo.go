// Package repository provides data access layer for the QC Ordinance Tracker.
// This file implements the notification repository: per-user notification
// lists and the unread/read/deleted lifecycle.
package repository

import (
	"context"
	"fmt"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
)

// NotificationRepository handles all database operations for notifications.
//
// Lifecycle: a notification is created unread, may be marked read (idempotent,
// never reverted), and may be hard deleted. There is no soft delete.
type NotificationRepository struct{}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

// NotificationFilter holds the optional filters for the notification list.
type NotificationFilter struct {
	Type     string // "all" or a notification type
	Priority string // "all" or low/medium/high/urgent
	Status   string // "all", "read", or "unread"
}

// Create inserts a new notification for a user.
// Side Effects: populates n.ID and n.CreatedAt with database values.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
        INSERT INTO notifications (user_id, notif_type, priority, title, message, document_id, document_type, committee_id, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `

	return database.DB.QueryRow(ctx, query,
		n.UserID, n.Type, n.Priority, n.Title, n.Message,
		n.DocumentID, n.DocumentType, n.CommitteeID, n.ExpiresAt,
	).Scan(&n.ID, &n.CreatedAt)
}

// LogEvent appends a notification_logs row. These rows feed the normalized
// activity view; the notifications table itself does not (rows there are
// mutable and deletable).
func (r *NotificationRepository) LogEvent(ctx context.Context, userID int, documentID *int, documentType *string, event, details string) error {
	query := `
        INSERT INTO notification_logs (user_id, document_id, document_type, event, details)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := database.DB.Exec(ctx, query, userID, documentID, documentType, event, details)
	return err
}

// List retrieves a user's notifications, newest first, applying the optional
// filters. Expired notifications are excluded.
func (r *NotificationRepository) List(ctx context.Context, userID int, f NotificationFilter) ([]models.Notification, error) {
	conds := []string{"user_id = $1", "(expires_at IS NULL OR expires_at > NOW())"}
	args := []interface{}{userID}

	if f.Type != "" && f.Type != "all" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("notif_type = $%d", len(args)))
	}
	if f.Priority != "" && f.Priority != "all" {
		args = append(args, f.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	switch f.Status {
	case "read":
		conds = append(conds, "is_read = true")
	case "unread":
		conds = append(conds, "is_read = false")
	}

	query := `
        SELECT id, user_id, notif_type, priority, title, message,
            document_id, document_type, committee_id, is_read, read_at, created_at, expires_at
        FROM notifications` + whereClause(conds) + `
        ORDER BY created_at DESC
    `

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message,
			&n.DocumentID, &n.DocumentType, &n.CommitteeID,
			&n.IsRead, &n.ReadAt, &n.CreatedAt, &n.ExpiresAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// CountUnread returns the number of unread notifications for a user.
// Expired notifications are excluded, matching List, so the badge never
// counts rows the page cannot show.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int) (int, error) {
	query := `SELECT COUNT(*) FROM notifications
        WHERE user_id = $1 AND is_read = false AND (expires_at IS NULL OR expires_at > NOW())`

	var count int
	err := database.DB.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

// MarkRead transitions one notification unread -> read. Idempotent: marking
// an already-read notification keeps its original read_at. The user scope
// prevents marking another user's notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID int) error {
	query := `
        UPDATE notifications
        SET is_read = true, read_at = COALESCE(read_at, NOW())
        WHERE id = $1 AND user_id = $2
    `

	_, err := database.DB.Exec(ctx, query, notificationID, userID)
	return err
}

// MarkAllRead transitions all of a user's unread notifications to read.
// Returns the number of rows updated.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	query := `
        UPDATE notifications
        SET is_read = true, read_at = NOW()
        WHERE user_id = $1 AND is_read = false
    `

	tag, err := database.DB.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes one notification. Hard delete, either read state.
func (r *NotificationRepository) Delete(ctx context.Context, notificationID, userID int) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	_, err := database.DB.Exec(ctx, query, notificationID, userID)
	return err
}

// ClearAllRead removes all read notifications for a user, leaving unread
// ones untouched. Returns the number of rows deleted.
func (r *NotificationRepository) ClearAllRead(ctx context.Context, userID int) (int64, error) {
	query := `DELETE FROM notifications WHERE user_id = $1 AND is_read = true`

	tag, err := database.DB.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
