// Package models defines the domain entities and data transfer objects for ProgramHub.
// It includes database models mapped to PostgreSQL tables, request DTOs for JSON input,
// and view models for enriched API responses.
package models

// ProgramStatus is the canonical lifecycle status of a program.
// Status is derived from the program's date fields except for the
// archived value, which is sticky and never recomputed.
type ProgramStatus string

const (
	ProgramBeforeApplication ProgramStatus = "before_application" // Apply window not yet open
	ProgramApplicationOpen   ProgramStatus = "application_open"   // Accepting applications
	ProgramInProgress        ProgramStatus = "in_progress"        // Between apply close and activity end
	ProgramCompleted         ProgramStatus = "completed"          // Activity dates have passed
	ProgramArchived          ProgramStatus = "archived"           // Terminal, set manually
)

// legacyProgramStatus maps statuses from the retired four-state scheme
// onto the canonical values. Normalization happens once at the data-access
// boundary; business logic only ever sees canonical values.
var legacyProgramStatus = map[string]ProgramStatus{
	"draft":   ProgramBeforeApplication,
	"open":    ProgramApplicationOpen,
	"closed":  ProgramInProgress,
	"ongoing": ProgramInProgress,
}

// NormalizeProgramStatus translates a stored status string into a canonical
// ProgramStatus. Canonical values pass through unchanged; legacy values are
// mapped; anything unrecognized falls back to in_progress so that the
// date-driven calculator remains the authority for such rows.
func NormalizeProgramStatus(s string) ProgramStatus {
	switch ProgramStatus(s) {
	case ProgramBeforeApplication, ProgramApplicationOpen, ProgramInProgress,
		ProgramCompleted, ProgramArchived:
		return ProgramStatus(s)
	}
	if mapped, ok := legacyProgramStatus[s]; ok {
		return mapped
	}
	return ProgramInProgress
}

// ApplicationStatus is the lifecycle status of an application.
//
// Transitions: submitted -> under_review -> {selected, rejected} (terminal);
// withdrawn is reachable from submitted and under_review by the applicant.
type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "submitted"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationSelected    ApplicationStatus = "selected"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"
)

// IsTerminal reports whether the status is a final review decision.
// Terminal applications cannot be withdrawn or re-reviewed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationSelected || s == ApplicationRejected
}

// User roles. Staff-capable roles may review applications, record
// selections, and toggle payments; program management requires
// operator or admin.
const (
	RoleAdmin     = "admin"
	RoleOperator  = "operator"
	RoleStaff     = "staff"
	RoleApplicant = "applicant"
)

// IsStaffRole reports whether the role may perform review, selection,
// and payment operations.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleOperator || role == RoleStaff
}

// IsOrganizerRole reports whether the role may create and manage programs.
func IsOrganizerRole(role string) bool {
	return role == RoleAdmin || role == RoleOperator
}

// IsValidRole reports whether role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleStaff, RoleApplicant:
		return true
	}
	return false
}
