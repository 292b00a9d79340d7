package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a system account with role-based access control.
//
// Database Table: users
// Security Note: PasswordHash must never be exposed in API responses or logs
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"` // Unique, used for login
	Name         string    `db:"name" json:"name"`   // Display name
	Role         string    `db:"role" json:"role"`   // admin, operator, staff, or applicant
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Program represents a community program run by the village office.
//
// Status is a cached value recomputed from the date fields on every read;
// archived is sticky. Revenue is a derived aggregate maintained incrementally
// by payment toggles and must stay consistent with the sum of fees over paid
// selected applications.
//
// Database Table: programs
// Related: Application (one-to-many)
type Program struct {
	ID              int            `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Summary         string         `db:"summary" json:"summary"`
	OrganizerID     int            `db:"organizer_id" json:"organizer_id"`
	Status          ProgramStatus  `db:"status" json:"status"`
	ApplyStart      time.Time      `db:"apply_start" json:"apply_start"`
	ApplyEnd        time.Time      `db:"apply_end" json:"apply_end"`
	ProgramStart    *time.Time     `db:"program_start" json:"program_start,omitempty"`
	ProgramEnd      *time.Time     `db:"program_end" json:"program_end,omitempty"`
	MaxParticipants int            `db:"max_participants" json:"max_participants"`
	Fee             int            `db:"fee" json:"fee"`         // Participation fee in KRW
	Revenue         int            `db:"revenue" json:"revenue"` // Cumulative, never negative
	ApplicationForm map[string]any `db:"application_form" json:"application_form,omitempty"` // JSON schema of input fields
	IsActive        bool           `db:"is_active" json:"is_active"`                         // Soft-delete flag
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// Application represents a resident's submission to a program.
// The payload is free-form JSON shaped by the program's application form
// and enriched server-side with an applicant identity snapshot at
// submission time.
//
// Database Table: applications
// Constraint: unique (program_id, applicant_id)
type Application struct {
	ID                int               `db:"id" json:"id"`
	ProgramID         int               `db:"program_id" json:"program_id"`
	ApplicantID       int               `db:"applicant_id" json:"applicant_id"`
	Payload           map[string]any    `db:"payload" json:"payload"`
	Status            ApplicationStatus `db:"status" json:"status"`
	Score             *float64          `db:"score" json:"score,omitempty"`
	Notes             *string           `db:"notes" json:"notes,omitempty"`
	IsPaymentReceived bool              `db:"is_payment_received" json:"is_payment_received"`
	PaymentReceivedAt *time.Time        `db:"payment_received_at" json:"payment_received_at,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
}

// Selection is the reviewer's decision record for an application.
// At most one Selection exists per Application; every write that changes
// Selected also updates the parent application's status in the same
// transaction so the two never diverge.
//
// Database Table: selections
// Constraint: unique (application_id)
type Selection struct {
	ID            int            `db:"id" json:"id"`
	ApplicationID int            `db:"application_id" json:"application_id"`
	Selected      bool           `db:"selected" json:"selected"`
	Reason        string         `db:"reason" json:"reason"`
	ReviewerID    int            `db:"reviewer_id" json:"reviewer_id"`
	ReviewedAt    time.Time      `db:"reviewed_at" json:"reviewed_at"`
	Criteria      map[string]any `db:"criteria" json:"criteria,omitempty"` // May include a numeric score
}

// AuditLog is an append-only record of significant state transitions.
//
// Database Table: audit_logs
type AuditLog struct {
	ID         int       `json:"id"`
	ActorID    *int      `json:"actor_id,omitempty"` // Nullable for system actions
	Action     string    `json:"action"`             // e.g. "REVIEW_APPLICATION", "TOGGLE_PAYMENT"
	ObjectType string    `json:"object_type"`        // e.g. "application", "program"
	ObjectID   *int      `json:"object_id,omitempty"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

// ============================================================================
// Data Transfer Objects (DTOs) - JSON Request Bodies
// ============================================================================

// LoginRequest carries user login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateProgramRequest carries operator input for a new program.
type CreateProgramRequest struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Summary         string         `json:"summary"`
	ApplyStart      time.Time      `json:"apply_start"`
	ApplyEnd        time.Time      `json:"apply_end"`
	ProgramStart    *time.Time     `json:"program_start,omitempty"`
	ProgramEnd      *time.Time     `json:"program_end,omitempty"`
	MaxParticipants int            `json:"max_participants"`
	Fee             int            `json:"fee"`
	ApplicationForm map[string]any `json:"application_form,omitempty"`
}

// UpdateProgramRequest carries a partial program edit. Nil fields are
// left unchanged.
type UpdateProgramRequest struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Summary         *string        `json:"summary,omitempty"`
	ApplyStart      *time.Time     `json:"apply_start,omitempty"`
	ApplyEnd        *time.Time     `json:"apply_end,omitempty"`
	ProgramStart    *time.Time     `json:"program_start,omitempty"`
	ProgramEnd      *time.Time     `json:"program_end,omitempty"`
	MaxParticipants *int           `json:"max_participants,omitempty"`
	Fee             *int           `json:"fee,omitempty"`
	ApplicationForm map[string]any `json:"application_form,omitempty"`
}

// SubmitApplicationRequest carries an applicant's submission.
type SubmitApplicationRequest struct {
	ProgramID int            `json:"program_id"`
	Payload   map[string]any `json:"payload"`
}

// UpdateApplicationRequest carries a partial application edit. Status
// is staff-only and limited to moving a submitted application into
// under_review; decisions go through the review endpoint.
type UpdateApplicationRequest struct {
	Payload map[string]any     `json:"payload,omitempty"`
	Status  *ApplicationStatus `json:"status,omitempty"`
	Score   *float64           `json:"score,omitempty"`
	Notes   *string            `json:"notes,omitempty"`
}

// ReviewRequest carries a review decision for an application.
type ReviewRequest struct {
	Decision ApplicationStatus `json:"decision"` // selected or rejected
	Score    *float64          `json:"score,omitempty"`
	Notes    *string           `json:"notes,omitempty"`
}

// PaymentRequest toggles the payment-received flag on an application.
type PaymentRequest struct {
	Received bool `json:"received"`
}

// CreateSelectionRequest carries a reviewer's selection record.
type CreateSelectionRequest struct {
	ApplicationID int            `json:"application_id"`
	Selected      bool           `json:"selected"`
	Reason        string         `json:"reason"`
	Criteria      map[string]any `json:"criteria,omitempty"`
}

// UpdateSelectionRequest carries a partial selection edit.
type UpdateSelectionRequest struct {
	Selected *bool          `json:"selected,omitempty"`
	Reason   *string        `json:"reason,omitempty"`
	Criteria map[string]any `json:"criteria,omitempty"`
}

// CreateUserRequest carries admin input for a new user account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// ============================================================================
// View Models - Enriched API Responses
// ============================================================================

// ApplicationView is an application enriched with applicant and program
// context for staff listings and CSV export.
type ApplicationView struct {
	Application
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
	ProgramTitle   string `json:"program_title"`
}

// ProgramApplicationStats is the per-program breakdown shown on the
// operator dashboard.
type ProgramApplicationStats struct {
	ProgramID     int           `json:"program_id"`
	ProgramTitle  string        `json:"program_title"`
	Status        ProgramStatus `json:"status"`
	TotalCount    int           `json:"total_count"`
	SelectedCount int           `json:"selected_count"`
	PaidCount     int           `json:"paid_count"`
	Revenue       int           `json:"revenue"`
}
