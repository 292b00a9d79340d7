// Package repository implements the database access layer for ProgramHub.
// This file implements the audit repository for state-transition logging.
package repository

import (
	"context"

	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/models"
)

// AuditRepository handles audit log entries.
//
// Audit logs record significant state transitions (submission, review,
// withdrawal, selection writes, payment toggles, program archival) with
// actor and request metadata. Entries are append-only: they are never
// modified or deleted once created. Logging is best-effort; a failed
// audit write does not fail the operation that triggered it.
type AuditRepository struct {
	db database.Querier
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db database.Querier) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log creates a new audit log entry.
//
// Common action types:
//   - "SUBMIT_APPLICATION", "WITHDRAW_APPLICATION", "REVIEW_APPLICATION"
//   - "CREATE_SELECTION", "UPDATE_SELECTION"
//   - "TOGGLE_PAYMENT"
//   - "ARCHIVE_PROGRAM", "CREATE_PROGRAM"
//   - "CREATE_USER", "DEACTIVATE_USER"
//
// Side Effects: Populates log.ID and log.CreatedAt with database values
func (r *AuditRepository) Log(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, object_type, object_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		log.ActorID, log.Action, log.ObjectType, log.ObjectID, log.IPAddress, log.UserAgent,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListRecent retrieves the most recent audit entries, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - limit: Maximum number of entries to retrieve
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, object_type, object_id, ip_address, user_agent, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(
			&l.ID, &l.ActorID, &l.Action, &l.ObjectType, &l.ObjectID,
			&l.IPAddress, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
