// Package repository implements the database access layer for ProgramHub.
// This file handles application records: submission, review bookkeeping,
// and the payment flag.
package repository

import (
	"context"
	"time"

	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/models"
)

// ApplicationRepository handles application-related database operations.
type ApplicationRepository struct {
	db database.Querier
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
//
// Parameters:
//   - db: Connection pool or transaction to issue queries on
//
// Returns:
//   - *ApplicationRepository: Initialized repository instance
func NewApplicationRepository(db database.Querier) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, program_id, applicant_id, payload, status,
	score, notes, is_payment_received, payment_received_at, created_at`

func scanApplication(row interface{ Scan(dest ...any) error }) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID, &a.ProgramID, &a.ApplicantID, &a.Payload, &a.Status,
		&a.Score, &a.Notes, &a.IsPaymentReceived, &a.PaymentReceivedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new application with status "submitted".
// The (program_id, applicant_id) pair carries a unique constraint, so a
// concurrent duplicate submission fails here with a unique violation even
// if it slipped past the existence pre-check.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - app: Application struct with ProgramID, ApplicantID, Payload, Status
//
// Returns:
//   - error: Unique violation on duplicate pair, database error otherwise
//
// Side Effects: Populates app.ID and app.CreatedAt with database values
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (program_id, applicant_id, payload, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		app.ProgramID, app.ApplicantID, app.Payload, app.Status,
	).Scan(&app.ID, &app.CreatedAt)
}

// GetByID retrieves a single application.
//
// Returns:
//   - *models.Application: Application with all fields
//   - error: pgx.ErrNoRows if missing, database error otherwise
func (r *ApplicationRepository) GetByID(ctx context.Context, applicationID int) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRow(ctx, query, applicationID))
}

// ExistsForApplicant reports whether the applicant already has an
// application for the program. Used as the duplicate-submission
// pre-check inside the submission transaction.
func (r *ApplicationRepository) ExistsForApplicant(ctx context.Context, programID, applicantID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE program_id = $1 AND applicant_id = $2
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, programID, applicantID).Scan(&exists)
	return exists, err
}

// ListByProgram retrieves all applications for a program enriched with
// applicant identity and program title, newest first. Used for staff
// listings and CSV export.
func (r *ApplicationRepository) ListByProgram(ctx context.Context, programID int) ([]models.ApplicationView, error) {
	query := `
		SELECT a.id, a.program_id, a.applicant_id, a.payload, a.status,
		       a.score, a.notes, a.is_payment_received, a.payment_received_at, a.created_at,
		       u.name AS applicant_name, u.email AS applicant_email,
		       p.title AS program_title
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		JOIN programs p ON p.id = a.program_id
		WHERE a.program_id = $1
		ORDER BY a.created_at DESC
	`
	return r.listViews(ctx, query, programID)
}

// ListAll retrieves every application enriched with applicant and
// program context, newest first. Staff only.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.ApplicationView, error) {
	query := `
		SELECT a.id, a.program_id, a.applicant_id, a.payload, a.status,
		       a.score, a.notes, a.is_payment_received, a.payment_received_at, a.created_at,
		       u.name AS applicant_name, u.email AS applicant_email,
		       p.title AS program_title
		FROM applications a
		JOIN users u ON u.id = a.applicant_id
		JOIN programs p ON p.id = a.program_id
		ORDER BY a.created_at DESC
	`
	return r.listViews(ctx, query)
}

func (r *ApplicationRepository) listViews(ctx context.Context, query string, args ...any) ([]models.ApplicationView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.ApplicationView
	for rows.Next() {
		var v models.ApplicationView
		if err := rows.Scan(
			&v.ID, &v.ProgramID, &v.ApplicantID, &v.Payload, &v.Status,
			&v.Score, &v.Notes, &v.IsPaymentReceived, &v.PaymentReceivedAt, &v.CreatedAt,
			&v.ApplicantName, &v.ApplicantEmail, &v.ProgramTitle,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

// ListByApplicant retrieves the applicant's own applications, newest first.
func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID int) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}

	return apps, rows.Err()
}

// Update rewrites the editable fields of an application, including its
// status, from the given struct.
func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	query := `UPDATE applications SET payload = $1, score = $2, notes = $3, status = $4 WHERE id = $5`
	_, err := r.db.Exec(ctx, query, app.Payload, app.Score, app.Notes, app.Status, app.ID)
	return err
}

// UpdateStatus persists a lifecycle transition.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, applicationID int, status models.ApplicationStatus) error {
	query := `UPDATE applications SET status = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, applicationID)
	return err
}

// UpdateReview persists a review decision together with its score and
// notes. Nil score or notes leave the stored values untouched, so a
// bare decision never erases earlier review input.
func (r *ApplicationRepository) UpdateReview(ctx context.Context, applicationID int, status models.ApplicationStatus, score *float64, notes *string) error {
	query := `
		UPDATE applications
		SET status = $1, score = COALESCE($2, score), notes = COALESCE($3, notes)
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, status, score, notes, applicationID)
	return err
}

// UpdatePayment persists the payment flag and its timestamp. Called
// inside the payment-toggle transaction alongside the program revenue
// adjustment.
func (r *ApplicationRepository) UpdatePayment(ctx context.Context, applicationID int, received bool, receivedAt *time.Time) error {
	query := `UPDATE applications SET is_payment_received = $1, payment_received_at = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, received, receivedAt, applicationID)
	return err
}
