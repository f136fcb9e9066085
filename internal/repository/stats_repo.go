// Package repository implements database access layer for the QC Ordinance Tracker.
// This file provides statistical aggregation queries for the history summary
// panel and dashboard displays.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
)

// StatsRepository handles statistical queries over the normalized activity
// view and the document tables. The activity aggregations run over the same
// activityBaseQuery used by ActivityRepository, which guarantees the summary
// panel and the detail list always agree on totals for identical filters.
type StatsRepository struct{}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// ActivityStats represents summary statistics for a filtered date window.
// Earliest/Latest are nil when no actions match (the "no results" state).
type ActivityStats struct {
	TotalActions    int        // Count of matching actions
	UniqueDocuments int        // Distinct document ids, NULLs ignored
	UniqueUsers     int        // Distinct user ids, NULLs ignored
	EarliestAction  *time.Time // Min timestamp, nil when empty
	LatestAction    *time.Time // Max timestamp, nil when empty
}

// ActionTypeCount is one entry of the top-actions breakdown.
type ActionTypeCount struct {
	ActionType string
	Count      int
}

// UserActionCount is one entry of the top-users breakdown.
// Grouping is by full user identity (id, names, role), not id alone.
type UserActionCount struct {
	UserID    int
	FirstName string
	LastName  string
	Role      string
	Count     int
}

// DashboardStats represents aggregated counts for the dashboard page.
type DashboardStats struct {
	TotalOrdinances  int // Rows in ordinances
	TotalResolutions int // Rows in resolutions
	ApprovedCount    int // Documents in approved or implemented status
	PendingCount     int // Documents in draft or pending status
	PendingReviews   int // Committee assignments still pending
	UnreadCount      int // Unread notifications for the viewing user
}

// GetActivityStats computes the summary statistics for the given filters.
// Runs over the shared activityBaseQuery projection; see ActivityRepository.
func (r *StatsRepository) GetActivityStats(ctx context.Context, f ActivityFilter) (*ActivityStats, error) {
	conds, args := activityConds(f)

	query := `SELECT
            COUNT(*) AS total_actions,
            COUNT(DISTINCT document_id) AS unique_documents,
            COUNT(DISTINCT user_id) AS unique_users,
            MIN(action_timestamp) AS earliest_action,
            MAX(action_timestamp) AS latest_action
        FROM (` + activityBaseQuery + `
        ) actions` + whereClause(conds)

	stats := &ActivityStats{}
	err := database.DB.QueryRow(ctx, query, args...).Scan(
		&stats.TotalActions,
		&stats.UniqueDocuments,
		&stats.UniqueUsers,
		&stats.EarliestAction,
		&stats.LatestAction,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return stats, nil
}

// TopActions returns up to limit action types ordered by count descending.
// Ties break arbitrarily.
func (r *StatsRepository) TopActions(ctx context.Context, f ActivityFilter, limit int) ([]ActionTypeCount, error) {
	conds, args := activityConds(f)

	args = append(args, limit)
	query := `SELECT action_type, COUNT(*) AS action_count
        FROM (` + activityBaseQuery + `
        ) actions` + whereClause(conds) + fmt.Sprintf(`
        GROUP BY action_type
        ORDER BY action_count DESC
        LIMIT $%d`, len(args))

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ActionTypeCount
	for rows.Next() {
		var c ActionTypeCount
		if err := rows.Scan(&c.ActionType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, nil
}

// TopUsers returns up to limit users ordered by action count descending.
// Rows without an acting user are excluded. Grouping is by full identity,
// so the same id with differing name formatting would group separately.
func (r *StatsRepository) TopUsers(ctx context.Context, f ActivityFilter, limit int) ([]UserActionCount, error) {
	conds, args := activityConds(f)
	conds = append(conds, "user_id IS NOT NULL")

	args = append(args, limit)
	query := `SELECT user_id, first_name, last_name, role, COUNT(*) AS action_count
        FROM (` + activityBaseQuery + `
        ) actions` + whereClause(conds) + fmt.Sprintf(`
        GROUP BY user_id, first_name, last_name, role
        ORDER BY action_count DESC
        LIMIT $%d`, len(args))

	rows, err := database.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []UserActionCount
	for rows.Next() {
		var c UserActionCount
		if err := rows.Scan(&c.UserID, &c.FirstName, &c.LastName, &c.Role, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	return counts, nil
}

// GetDashboardStats retrieves aggregated counts for the dashboard page.
// userID scopes the unread notification count to the viewing user.
func (r *StatsRepository) GetDashboardStats(ctx context.Context, userID int) (*DashboardStats, error) {
	query := `
        SELECT
            (SELECT COUNT(*) FROM ordinances) AS total_ordinances,
            (SELECT COUNT(*) FROM resolutions) AS total_resolutions,
            (SELECT COUNT(*) FROM ordinances WHERE status IN ('approved', 'implemented'))
              + (SELECT COUNT(*) FROM resolutions WHERE status IN ('approved', 'implemented')) AS approved_count,
            (SELECT COUNT(*) FROM ordinances WHERE status IN ('draft', 'pending'))
              + (SELECT COUNT(*) FROM resolutions WHERE status IN ('draft', 'pending')) AS pending_count,
            (SELECT COUNT(*) FROM document_committees WHERE review_status = 'pending') AS pending_reviews,
            (SELECT COUNT(*) FROM notifications
                WHERE user_id = $1 AND is_read = false
                AND (expires_at IS NULL OR expires_at > NOW())) AS unread_count
    `

	stats := &DashboardStats{}
	err := database.DB.QueryRow(ctx, query, userID).Scan(
		&stats.TotalOrdinances,
		&stats.TotalResolutions,
		&stats.ApprovedCount,
		&stats.PendingCount,
		&stats.PendingReviews,
		&stats.UnreadCount,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
