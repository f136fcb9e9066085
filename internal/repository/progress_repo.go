// Package repository implements database access layer for the QC Ordinance Tracker.
// This file provides reads for the progress reporting page (KPIs and
// milestones). Rows are seeded by migration, never created at request time.
package repository

import (
	"context"

	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/models"
)

// ProgressRepository handles progress reporting queries.
type ProgressRepository struct{}

// NewProgressRepository creates a new instance of ProgressRepository.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

// ListKPIs retrieves all KPIs ordered by name.
func (r *ProgressRepository) ListKPIs(ctx context.Context) ([]models.KPI, error) {
	query := `SELECT id, name, target_value, current_value, unit, updated_at FROM progress_kpis ORDER BY name`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kpis []models.KPI
	for rows.Next() {
		var k models.KPI
		if err := rows.Scan(&k.ID, &k.Name, &k.TargetValue, &k.CurrentValue, &k.Unit, &k.UpdatedAt); err != nil {
			return nil, err
		}
		kpis = append(kpis, k)
	}

	return kpis, nil
}

// ListMilestones retrieves all milestones ordered by expected date.
func (r *ProgressRepository) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	query := `
        SELECT id, title, description, expected_date, actual_date, status, created_at
        FROM progress_milestones
        ORDER BY expected_date
    `

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Description, &m.ExpectedDate,
			&m.ActualDate, &m.Status, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}

	return milestones, nil
}

// UpdateKPIValue sets the current value of one KPI.
func (r *ProgressRepository) UpdateKPIValue(ctx context.Context, kpiID int, value float64) error {
	query := `UPDATE progress_kpis SET current_value = $1, updated_at = NOW() WHERE id = $2`
	_, err := database.DB.Exec(ctx, query, value, kpiID)
	return err
}
