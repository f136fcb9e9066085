// Package repository provides data access layer for the QC Ordinance Tracker.
// This file implements the unified activity query builder: a single normalized
// view over every document-related event table, with typed filters and
// deterministic pagination.
package repository

import (
	"fmt"
	"strings"
	"time"

	"context"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
)

// PageSize is the fixed page size for the activity history list.
const PageSize = 20

// activityBaseQuery is the single definition of the normalized activity view.
// Each source table is projected into the same column shape (NULL where a
// column does not apply) and the projections are combined with UNION ALL.
// Duplicates across sources are intentionally not deduplicated.
//
// Both the paginated list (ListActions) and the summary statistics
// (StatsRepository) are built from this constant so the detail view and the
// summary panel can never drift apart.
const activityBaseQuery = `
        SELECT 'status_change' AS action_type,
            h.id AS action_id, h.document_id, h.document_type,
            'Status changed from ' || h.old_status || ' to ' || h.new_status AS description,
            h.remarks AS details,
            h.changed_by AS user_id, u.first_name, u.last_name, u.role,
            h.created_at AS action_timestamp,
            NULL::text AS ip_address, NULL::text AS user_agent,
            'status_history' AS source_table,
            NULL::text AS reference_number,
            o.number AS ordinance_number, r.number AS resolution_number
        FROM status_history h
        LEFT JOIN users u ON u.id = h.changed_by
        LEFT JOIN ordinances o ON h.document_type = 'ordinance' AND o.id = h.document_id
        LEFT JOIN resolutions r ON h.document_type = 'resolution' AND r.id = h.document_id
        UNION ALL
        SELECT 'priority_change',
            p.id, p.document_id, p.document_type,
            'Priority set to ' || p.new_priority,
            p.reason,
            p.changed_by, u.first_name, u.last_name, u.role,
            p.created_at,
            NULL::text, NULL::text,
            'document_priority_history',
            NULL::text,
            o.number, r.number
        FROM document_priority_history p
        LEFT JOIN users u ON u.id = p.changed_by
        LEFT JOIN ordinances o ON p.document_type = 'ordinance' AND o.id = p.document_id
        LEFT JOIN resolutions r ON p.document_type = 'resolution' AND r.id = p.document_id
        UNION ALL
        SELECT 'numbering',
            n.id, n.document_id, n.document_type,
            'Assigned number ' || n.assigned_number,
            n.remarks,
            n.assigned_by, u.first_name, u.last_name, u.role,
            n.created_at,
            NULL::text, NULL::text,
            'document_numbering_logs',
            n.assigned_number,
            o.number, r.number
        FROM document_numbering_logs n
        LEFT JOIN users u ON u.id = n.assigned_by
        LEFT JOIN ordinances o ON n.document_type = 'ordinance' AND o.id = n.document_id
        LEFT JOIN resolutions r ON n.document_type = 'resolution' AND r.id = n.document_id
        UNION ALL
        SELECT 'tagging',
            t.id, t.document_id, t.document_type,
            'Tagged ' || t.tag,
            t.details,
            t.tagged_by, u.first_name, u.last_name, u.role,
            t.created_at,
            NULL::text, NULL::text,
            'tagging_history',
            NULL::text,
            o.number, r.number
        FROM tagging_history t
        LEFT JOIN users u ON u.id = t.tagged_by
        LEFT JOIN ordinances o ON t.document_type = 'ordinance' AND o.id = t.document_id
        LEFT JOIN resolutions r ON t.document_type = 'resolution' AND r.id = t.document_id
        UNION ALL
        SELECT 'audit',
            a.id,
            CASE WHEN a.object_type IN ('ordinance', 'resolution') THEN a.object_id END,
            CASE WHEN a.object_type IN ('ordinance', 'resolution') THEN a.object_type END,
            a.action,
            a.details,
            a.actor_id, u.first_name, u.last_name, u.role,
            a.created_at,
            a.ip_address, a.user_agent,
            'audit_logs',
            NULL::text,
            o.number, r.number
        FROM audit_logs a
        LEFT JOIN users u ON u.id = a.actor_id
        LEFT JOIN ordinances o ON a.object_type = 'ordinance' AND o.id = a.object_id
        LEFT JOIN resolutions r ON a.object_type = 'resolution' AND r.id = a.object_id
        UNION ALL
        SELECT 'registration',
            d.id, d.document_id, d.document_type,
            'Draft registered as ' || d.registration_number,
            NULL::text,
            d.registered_by, u.first_name, u.last_name, u.role,
            d.created_at,
            NULL::text, NULL::text,
            'draft_registrations',
            d.registration_number,
            o.number, r.number
        FROM draft_registrations d
        LEFT JOIN users u ON u.id = d.registered_by
        LEFT JOIN ordinances o ON d.document_type = 'ordinance' AND o.id = d.document_id
        LEFT JOIN resolutions r ON d.document_type = 'resolution' AND r.id = d.document_id
        UNION ALL
        SELECT 'committee_assignment',
            dc.id, dc.document_id, dc.document_type,
            'Assigned to committee ' || c.name,
            dc.review_status,
            dc.assigned_by, u.first_name, u.last_name, u.role,
            dc.created_at,
            NULL::text, NULL::text,
            'document_committees',
            NULL::text,
            o.number, r.number
        FROM document_committees dc
        LEFT JOIN committees c ON c.id = dc.committee_id
        LEFT JOIN users u ON u.id = dc.assigned_by
        LEFT JOIN ordinances o ON dc.document_type = 'ordinance' AND o.id = dc.document_id
        LEFT JOIN resolutions r ON dc.document_type = 'resolution' AND r.id = dc.document_id
        UNION ALL
        SELECT 'notification',
            nl.id, nl.document_id, nl.document_type,
            nl.event,
            nl.details,
            nl.user_id, u.first_name, u.last_name, u.role,
            nl.created_at,
            NULL::text, NULL::text,
            'notification_logs',
            NULL::text,
            o.number, r.number
        FROM notification_logs nl
        LEFT JOIN users u ON u.id = nl.user_id
        LEFT JOIN ordinances o ON nl.document_type = 'ordinance' AND o.id = nl.document_id
        LEFT JOIN resolutions r ON nl.document_type = 'resolution' AND r.id = nl.document_id`

// actionColumns is the outer projection over the combined view, in the
// order ActionRecord fields are scanned.
const actionColumns = `action_type, action_id, document_id, document_type, description, details,
            user_id, first_name, last_name, role, action_timestamp, ip_address, user_agent,
            source_table, reference_number, ordinance_number, resolution_number`

// ActivityFilter holds the optional filters for the activity history view.
// Zero values mean "no filter"; DocumentType and ActionType also accept the
// explicit "all" sentinel used by the page query parameters.
type ActivityFilter struct {
	DocumentType string    // "all", "ordinance", or "resolution"
	ActionType   string    // "all" or a normalized action_type value
	DocumentID   int       // 0 = any document
	UserID       int       // 0 = any user
	StartDate    time.Time // Zero = unbounded; inclusive
	EndDate      time.Time // Zero = unbounded; inclusive of the full end day
	Page         int       // 1-based; clamped to >= 1, never to <= total pages
}

// ActionRecord is one row of the normalized activity view.
// Pointer fields are NULL for sources where the column does not apply.
type ActionRecord struct {
	ActionType       string
	ActionID         int
	DocumentID       *int
	DocumentType     *string
	Description      string
	Details          *string
	UserID           *int
	FirstName        *string
	LastName         *string
	Role             *string
	Timestamp        time.Time
	IPAddress        *string
	UserAgent        *string
	SourceTable      string
	ReferenceNumber  *string
	OrdinanceNumber  *string
	ResolutionNumber *string
}

// ActionPage is one page of filtered activity with pagination totals.
type ActionPage struct {
	Actions    []ActionRecord
	TotalCount int // Rows matching the filters before slicing
	TotalPages int // ceil(TotalCount / PageSize)
	Page       int // The page actually returned (>= 1)
}

// ActivityRepository builds and executes queries over the normalized
// activity view defined by activityBaseQuery.
type ActivityRepository struct{}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

// activityConds converts a filter into parameterized WHERE conditions.
// User-supplied values are always passed as query arguments, never
// interpolated into the SQL text.
func activityConds(f ActivityFilter) ([]string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.DocumentType != "" && f.DocumentType != "all" {
		args = append(args, f.DocumentType)
		conds = append(conds, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if f.ActionType != "" && f.ActionType != "all" {
		args = append(args, f.ActionType)
		conds = append(conds, fmt.Sprintf("action_type = $%d", len(args)))
	}
	if f.DocumentID > 0 {
		args = append(args, f.DocumentID)
		conds = append(conds, fmt.Sprintf("document_id = $%d", len(args)))
	}
	if f.UserID > 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if !f.StartDate.IsZero() {
		args = append(args, f.StartDate)
		conds = append(conds, fmt.Sprintf("action_timestamp >= $%d", len(args)))
	}
	if !f.EndDate.IsZero() {
		args = append(args, f.EndDate)
		conds = append(conds, fmt.Sprintf("action_timestamp <= $%d", len(args)))
	}

	return conds, args
}

// whereClause joins conditions into a WHERE clause, or returns "" when there
// are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// ListActions returns one page of the filtered activity view, newest first.
//
// Pagination contract:
//   - TotalCount is computed over the filtered set before slicing.
//   - Page is clamped to >= 1 but not to <= TotalPages; requesting a page
//     beyond the last returns an empty slice, not an error.
//   - Ordering is timestamp DESC with (source_table, action_id DESC) as the
//     tie-break, so rows with identical timestamps paginate deterministically.
//
// Returns ErrStoreUnavailable (wrapped) when the store cannot be reached.
func (r *ActivityRepository) ListActions(ctx context.Context, f ActivityFilter) (*ActionPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}

	conds, args := activityConds(f)
	where := whereClause(conds)

	// Total before slicing; drives TotalPages and the stats consistency check.
	countQuery := `SELECT COUNT(*) FROM (` + activityBaseQuery + `
        ) actions` + where

	var total int
	if err := database.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	page := &ActionPage{
		Actions:    []ActionRecord{},
		TotalCount: total,
		TotalPages: (total + PageSize - 1) / PageSize,
		Page:       f.Page,
	}

	listQuery := `SELECT ` + actionColumns + `
        FROM (` + activityBaseQuery + `
        ) actions` + where + fmt.Sprintf(`
        ORDER BY action_timestamp DESC, source_table, action_id DESC
        LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	args = append(args, PageSize, (f.Page-1)*PageSize)

	rows, err := database.DB.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a ActionRecord
		if err := rows.Scan(
			&a.ActionType, &a.ActionID, &a.DocumentID, &a.DocumentType,
			&a.Description, &a.Details,
			&a.UserID, &a.FirstName, &a.LastName, &a.Role,
			&a.Timestamp, &a.IPAddress, &a.UserAgent,
			&a.SourceTable, &a.ReferenceNumber, &a.OrdinanceNumber, &a.ResolutionNumber,
		); err != nil {
			return nil, err
		}
		page.Actions = append(page.Actions, a)
	}

	return page, nil
}
