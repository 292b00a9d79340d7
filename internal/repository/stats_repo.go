// Package repository implements the database access layer for ProgramHub.
// This file provides aggregation queries for the operator dashboard.
package repository

import (
	"context"

	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/models"
)

// StatsRepository handles statistical queries for dashboard displays.
type StatsRepository struct {
	db database.Querier
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db database.Querier) *StatsRepository {
	return &StatsRepository{db: db}
}

// DashboardStats represents system-wide aggregates for the operator
// dashboard.
type DashboardStats struct {
	TotalPrograms     int `json:"total_programs"` // Active (non-soft-deleted) programs
	OpenPrograms      int `json:"open_programs"`  // Programs currently accepting applications
	TotalApplications int `json:"total_applications"`
	SubmittedCount    int `json:"submitted_count"`
	UnderReviewCount  int `json:"under_review_count"`
	SelectedCount     int `json:"selected_count"`
	RejectedCount     int `json:"rejected_count"`
	WithdrawnCount    int `json:"withdrawn_count"`
	PaidCount         int `json:"paid_count"`    // Selected applications with payment received
	TotalRevenue      int `json:"total_revenue"` // Sum of program revenue counters
}

// GetDashboardStats retrieves aggregated statistics for the operator
// dashboard in a single query.
//
// Database: CASE aggregations over applications joined with a scalar
// subquery over programs
func (r *StatsRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM programs WHERE is_active = true) AS total_programs,
			(SELECT COUNT(*) FROM programs WHERE is_active = true AND status = 'application_open') AS open_programs,
			COUNT(a.id) AS total_applications,
			COUNT(CASE WHEN a.status = 'submitted' THEN 1 END) AS submitted_count,
			COUNT(CASE WHEN a.status = 'under_review' THEN 1 END) AS under_review_count,
			COUNT(CASE WHEN a.status = 'selected' THEN 1 END) AS selected_count,
			COUNT(CASE WHEN a.status = 'rejected' THEN 1 END) AS rejected_count,
			COUNT(CASE WHEN a.status = 'withdrawn' THEN 1 END) AS withdrawn_count,
			COUNT(CASE WHEN a.is_payment_received THEN 1 END) AS paid_count,
			(SELECT COALESCE(SUM(revenue), 0) FROM programs WHERE is_active = true) AS total_revenue
		FROM applications a
	`

	stats := &DashboardStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalPrograms,
		&stats.OpenPrograms,
		&stats.TotalApplications,
		&stats.SubmittedCount,
		&stats.UnderReviewCount,
		&stats.SelectedCount,
		&stats.RejectedCount,
		&stats.WithdrawnCount,
		&stats.PaidCount,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ListProgramStats retrieves the per-program application breakdown for
// the operator dashboard, newest program first.
func (r *StatsRepository) ListProgramStats(ctx context.Context) ([]models.ProgramApplicationStats, error) {
	query := `
		SELECT p.id, p.title, p.status,
		       COUNT(a.id) AS total_count,
		       COUNT(CASE WHEN a.status = 'selected' THEN 1 END) AS selected_count,
		       COUNT(CASE WHEN a.is_payment_received THEN 1 END) AS paid_count,
		       p.revenue
		FROM programs p
		LEFT JOIN applications a ON a.program_id = p.id
		WHERE p.is_active = true
		GROUP BY p.id, p.title, p.status, p.revenue, p.created_at
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProgramApplicationStats
	for rows.Next() {
		var s models.ProgramApplicationStats
		if err := rows.Scan(
			&s.ProgramID, &s.ProgramTitle, &s.Status,
			&s.TotalCount, &s.SelectedCount, &s.PaidCount, &s.Revenue,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}
