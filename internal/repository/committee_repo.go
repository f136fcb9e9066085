// Package repository implements database access layer for the QC Ordinance Tracker.
// This file handles committees, committee membership, and document review
// assignments.
package repository

import (
	"context"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
)

// CommitteeRepository handles committee-related database operations.
type CommitteeRepository struct{}

// NewCommitteeRepository creates a new instance of CommitteeRepository.
func NewCommitteeRepository() *CommitteeRepository {
	return &CommitteeRepository{}
}

// ListAll retrieves all committees with member and assigned-document counts,
// ordered alphabetically. Used by list views and assignment forms.
func (r *CommitteeRepository) ListAll(ctx context.Context) ([]models.CommitteeView, error) {
	query := `
        SELECT c.id, c.name, c.description, c.created_at,
            COUNT(DISTINCT cm.user_id) AS member_count,
            COUNT(DISTINCT dc.id) AS document_count
        FROM committees c
        LEFT JOIN committee_members cm ON cm.committee_id = c.id
        LEFT JOIN document_committees dc ON dc.committee_id = c.id
        GROUP BY c.id, c.name, c.description, c.created_at
        ORDER BY c.name
    `

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var committees []models.CommitteeView
	for rows.Next() {
		var c models.CommitteeView
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.CreatedAt,
			&c.MemberCount, &c.DocumentCount,
		); err != nil {
			return nil, err
		}
		committees = append(committees, c)
	}

	return committees, nil
}

// ListMembers retrieves the users sitting on a committee, ordered by name.
func (r *CommitteeRepository) ListMembers(ctx context.Context, committeeID int) ([]models.User, error) {
	query := `
        SELECT u.id, u.email, u.first_name, u.last_name, u.role, u.created_at
        FROM committee_members cm
        JOIN users u ON u.id = cm.user_id
        WHERE cm.committee_id = $1
        ORDER BY u.last_name, u.first_name
    `

	rows, err := database.DB.Query(ctx, query, committeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

// AddMember adds a user to a committee. Idempotent via the composite key.
func (r *CommitteeRepository) AddMember(ctx context.Context, committeeID, userID int) error {
	query := `
        INSERT INTO committee_members (committee_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (committee_id, user_id) DO NOTHING
    `

	_, err := database.DB.Exec(ctx, query, committeeID, userID)
	return err
}

// RemoveMember removes a user from a committee.
func (r *CommitteeRepository) RemoveMember(ctx context.Context, committeeID, userID int) error {
	query := `DELETE FROM committee_members WHERE committee_id = $1 AND user_id = $2`
	_, err := database.DB.Exec(ctx, query, committeeID, userID)
	return err
}

// ListAssignments retrieves the committee assignments for one document.
func (r *CommitteeRepository) ListAssignments(ctx context.Context, documentID int, documentType string) ([]models.CommitteeAssignment, error) {
	query := `
        SELECT id, document_id, document_type, committee_id, review_status, assigned_by, created_at
        FROM document_committees
        WHERE document_id = $1 AND document_type = $2
        ORDER BY created_at DESC
    `

	rows, err := database.DB.Query(ctx, query, documentID, documentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.CommitteeAssignment
	for rows.Next() {
		var a models.CommitteeAssignment
		if err := rows.Scan(
			&a.ID, &a.DocumentID, &a.DocumentType, &a.CommitteeID,
			&a.ReviewStatus, &a.AssignedBy, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// UpdateReviewStatus sets the review status of one assignment.
func (r *CommitteeRepository) UpdateReviewStatus(ctx context.Context, assignmentID int, status string) error {
	query := `UPDATE document_committees SET review_status = $1 WHERE id = $2`
	_, err := database.DB.Exec(ctx, query, status, assignmentID)
	return err
}
