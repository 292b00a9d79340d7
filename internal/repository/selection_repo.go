// Package repository implements the database access layer for ProgramHub.
// This file handles selection records, the one-to-one reviewer decision
// attached to an application.
package repository

import (
	"context"

	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/models"
)

// SelectionRepository handles selection-related database operations.
type SelectionRepository struct {
	db database.Querier
}

// NewSelectionRepository creates a new instance of SelectionRepository.
func NewSelectionRepository(db database.Querier) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// Create inserts a new selection record.
// The application_id column carries a unique constraint, so a concurrent
// duplicate selection fails here even if it slipped past the pre-check.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - sel: Selection with ApplicationID, Selected, Reason, ReviewerID, Criteria
//
// Returns:
//   - error: Unique violation on duplicate application, database error otherwise
//
// Side Effects: Populates sel.ID and sel.ReviewedAt with database values
func (r *SelectionRepository) Create(ctx context.Context, sel *models.Selection) error {
	query := `
		INSERT INTO selections (application_id, selected, reason, reviewer_id, criteria)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, reviewed_at
	`
	return r.db.QueryRow(ctx, query,
		sel.ApplicationID, sel.Selected, sel.Reason, sel.ReviewerID, sel.Criteria,
	).Scan(&sel.ID, &sel.ReviewedAt)
}

// GetByID retrieves a single selection.
//
// Returns:
//   - *models.Selection: Selection with all fields
//   - error: pgx.ErrNoRows if missing, database error otherwise
func (r *SelectionRepository) GetByID(ctx context.Context, selectionID int) (*models.Selection, error) {
	query := `
		SELECT id, application_id, selected, reason, reviewer_id, reviewed_at, criteria
		FROM selections
		WHERE id = $1
	`
	var sel models.Selection
	err := r.db.QueryRow(ctx, query, selectionID).Scan(
		&sel.ID, &sel.ApplicationID, &sel.Selected, &sel.Reason,
		&sel.ReviewerID, &sel.ReviewedAt, &sel.Criteria,
	)
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

// ExistsForApplication reports whether the application already has a
// selection record. Used as the duplicate pre-check inside the
// selection-create transaction.
func (r *SelectionRepository) ExistsForApplication(ctx context.Context, applicationID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM selections WHERE application_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, applicationID).Scan(&exists)
	return exists, err
}

// Update rewrites a selection's decision fields and refreshes the
// review timestamp.
func (r *SelectionRepository) Update(ctx context.Context, sel *models.Selection) error {
	query := `
		UPDATE selections
		SET selected = $1, reason = $2, reviewer_id = $3, criteria = $4, reviewed_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query,
		sel.Selected, sel.Reason, sel.ReviewerID, sel.Criteria, sel.ID,
	)
	return err
}
