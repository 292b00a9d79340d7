// Package repository implements the database access layer for ProgramHub.
// This file handles program records including CRUD, status persistence, and
// the atomic revenue counter.
package repository

import (
	"context"

	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/models"
)

// ProgramRepository handles program-related database operations.
// It is constructed against a Querier, so a service can re-scope it onto
// an open transaction where an invariant spans multiple rows.
type ProgramRepository struct {
	db database.Querier
}

// NewProgramRepository creates a new instance of ProgramRepository.
//
// Parameters:
//   - db: Connection pool or transaction to issue queries on
//
// Returns:
//   - *ProgramRepository: Initialized repository instance
func NewProgramRepository(db database.Querier) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, title, description, summary, organizer_id, status,
	apply_start, apply_end, program_start, program_end,
	max_participants, fee, revenue, application_form, is_active, created_at`

func scanProgram(row interface{ Scan(dest ...any) error }) (*models.Program, error) {
	var p models.Program
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Summary, &p.OrganizerID, &p.Status,
		&p.ApplyStart, &p.ApplyEnd, &p.ProgramStart, &p.ProgramEnd,
		&p.MaxParticipants, &p.Fee, &p.Revenue, &p.ApplicationForm, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new program record.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - program: Program struct with all fields except ID and CreatedAt
//
// Returns:
//   - error: Database error if insertion fails, nil on success
//
// Side Effects: Populates program.ID and program.CreatedAt with database values
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	query := `
		INSERT INTO programs (title, description, summary, organizer_id, status,
			apply_start, apply_end, program_start, program_end,
			max_participants, fee, application_form)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		program.Title, program.Description, program.Summary, program.OrganizerID,
		program.Status, program.ApplyStart, program.ApplyEnd,
		program.ProgramStart, program.ProgramEnd,
		program.MaxParticipants, program.Fee, program.ApplicationForm,
	).Scan(&program.ID, &program.CreatedAt)
}

// GetByID retrieves a single active program.
// Soft-deleted programs (is_active = false) are treated as missing.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - programID: ID of the program to retrieve
//
// Returns:
//   - *models.Program: Program with all fields
//   - error: pgx.ErrNoRows if missing or inactive, database error otherwise
func (r *ProgramRepository) GetByID(ctx context.Context, programID int) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1 AND is_active = true`
	return scanProgram(r.db.QueryRow(ctx, query, programID))
}

// List retrieves all active programs, newest first. An empty statusFilter
// returns every status.
func (r *ProgramRepository) List(ctx context.Context, statusFilter models.ProgramStatus) ([]models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE is_active = true`
	args := []any{}
	if statusFilter != "" {
		query += ` AND status = $1`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *p)
	}

	return programs, rows.Err()
}

// ListActive retrieves every active program regardless of status.
// Used by the reconcile job to sweep for drifted statuses.
func (r *ProgramRepository) ListActive(ctx context.Context) ([]models.Program, error) {
	return r.List(ctx, "")
}

// Update rewrites the editable fields of a program.
// Status and revenue are deliberately excluded; they have dedicated
// write paths.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	query := `
		UPDATE programs
		SET title = $1, description = $2, summary = $3,
		    apply_start = $4, apply_end = $5, program_start = $6, program_end = $7,
		    max_participants = $8, fee = $9, application_form = $10
		WHERE id = $11
	`
	_, err := r.db.Exec(ctx, query,
		program.Title, program.Description, program.Summary,
		program.ApplyStart, program.ApplyEnd, program.ProgramStart, program.ProgramEnd,
		program.MaxParticipants, program.Fee, program.ApplicationForm,
		program.ID,
	)
	return err
}

// UpdateStatus persists a recalculated lifecycle status.
// Called by the status synchronizer when the computed status differs
// from the stored one.
func (r *ProgramRepository) UpdateStatus(ctx context.Context, programID int, status models.ProgramStatus) error {
	query := `UPDATE programs SET status = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, programID)
	return err
}

// Archive marks a program as archived. Archived is terminal and sticky:
// the status synchronizer never moves a program out of it.
func (r *ProgramRepository) Archive(ctx context.Context, programID int) error {
	query := `UPDATE programs SET status = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, models.ProgramArchived, programID)
	return err
}

// SoftDelete deactivates a program. Rows are never hard-deleted.
func (r *ProgramRepository) SoftDelete(ctx context.Context, programID int) error {
	query := `UPDATE programs SET is_active = false WHERE id = $1`
	_, err := r.db.Exec(ctx, query, programID)
	return err
}

// IncrementRevenue atomically adds amount to the program's revenue
// counter. The increment happens at the storage layer so that concurrent
// payment toggles across applications of the same program cannot lose
// updates.
func (r *ProgramRepository) IncrementRevenue(ctx context.Context, programID, amount int) error {
	query := `UPDATE programs SET revenue = revenue + $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, amount, programID)
	return err
}

// DecrementRevenue atomically subtracts amount from the program's
// revenue counter, clamped at a floor of zero.
func (r *ProgramRepository) DecrementRevenue(ctx context.Context, programID, amount int) error {
	query := `UPDATE programs SET revenue = GREATEST(revenue - $1, 0) WHERE id = $2`
	_, err := r.db.Exec(ctx, query, amount, programID)
	return err
}
