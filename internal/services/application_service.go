package services

import (
	"context"
	"time"

	"github.com/maeulsoft/programhub/internal/apperr"
	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/logger"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/status"
	"github.com/maeulsoft/programhub/internal/validation"
)

// ApplicationService implements the application lifecycle: submission
// inside the program's application window, applicant edits and
// withdrawal while the application is still open, staff review, and
// payment confirmation with its revenue side effect.
type ApplicationService struct {
	db           database.DB
	applications *repository.ApplicationRepository
	programs     *repository.ProgramRepository
	users        *repository.UserRepository
	log          logger.Logger
	now          func() time.Time
}

// NewApplicationService creates an ApplicationService backed by the
// given database.
//
// Parameters:
//   - db: database handle; multi-row invariants run in transactions on it
//   - log: structured logger
//
// Returns:
//   - *ApplicationService: the configured service using wall-clock KST time
func NewApplicationService(db database.DB, log logger.Logger) *ApplicationService {
	return &ApplicationService{
		db:           db,
		applications: repository.NewApplicationRepository(db),
		programs:     repository.NewProgramRepository(db),
		users:        repository.NewUserRepository(db),
		log:          log,
		now:          status.Now,
	}
}

// WithClock replaces the service's time source for tests.
func (s *ApplicationService) WithClock(now func() time.Time) *ApplicationService {
	s.now = now
	return s
}

// Submit creates a new application for the acting applicant.
//
// The submission is accepted only while the program's application window
// is open (evaluated against the derived status, not the stored one).
// The payload is validated against the program's application form schema
// and enriched with an identity snapshot of the applicant, so the record
// stays meaningful even if the account is later renamed or deactivated.
// The duplicate check and insert run in one transaction; the unique
// (program_id, applicant_id) constraint backstops concurrent submissions.
//
// Parameters:
//   - ctx: request context
//   - applicantID: ID of the submitting user
//   - req: target program and the form payload
//
// Returns:
//   - *models.Application: the stored application in submitted status
//   - error: apperr.NotFound when the program does not exist,
//     apperr.Forbidden when the window is closed,
//     apperr.Invalid when the payload violates the form schema,
//     apperr.Conflict when the applicant already applied
func (s *ApplicationService) Submit(ctx context.Context, applicantID int, req *models.SubmitApplicationRequest) (*models.Application, error) {
	program, err := s.programs.GetByID(ctx, req.ProgramID)
	if err != nil {
		return nil, mapNoRows(err, "program", req.ProgramID)
	}

	// Archived programs never report application_open, so this single
	// check covers both the window and the archive guard.
	if status.Calculate(program, s.now()) != models.ProgramApplicationOpen {
		return nil, apperr.Forbidden("program %d is not accepting applications", program.ID)
	}

	if err := validation.ValidatePayload(program.ApplicationForm, req.Payload); err != nil {
		return nil, err
	}

	// The applicant comes from a live session, so a miss here means the
	// account was deactivated mid-session.
	applicant, err := s.users.FindByID(ctx, applicantID)
	if err != nil {
		return nil, apperr.Forbidden("applicant account %d is not active", applicantID)
	}

	payload := make(map[string]any, len(req.Payload)+1)
	for k, v := range req.Payload {
		payload[k] = v
	}
	payload["_applicant"] = map[string]any{
		"name":  applicant.Name,
		"email": applicant.Email,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txApps := repository.NewApplicationRepository(tx)
	exists, err := txApps.ExistsForApplicant(ctx, program.ID, applicantID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("applicant %d already applied to program %d", applicantID, program.ID)
	}

	app := &models.Application{
		ProgramID:   program.ID,
		ApplicantID: applicantID,
		Payload:     payload,
		Status:      models.ApplicationSubmitted,
	}
	if err := txApps.Create(ctx, app); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("applicant %d already applied to program %d", applicantID, program.ID)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// Get returns a single application. Applicants can only read their own;
// staff roles can read any.
//
// Parameters:
//   - ctx: request context
//   - actor: the authenticated caller
//   - id: application ID
//
// Returns:
//   - *models.Application: the application
//   - error: apperr.NotFound or apperr.Forbidden
func (s *ApplicationService) Get(ctx context.Context, actor Actor, id int) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "application", id)
	}
	if !models.IsStaffRole(actor.Role) && app.ApplicantID != actor.ID {
		return nil, apperr.Forbidden("application %d belongs to another applicant", id)
	}
	return app, nil
}

// ListForProgram returns a program's applications enriched with
// applicant and program context for staff listings.
func (s *ApplicationService) ListForProgram(ctx context.Context, programID int) ([]models.ApplicationView, error) {
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		return nil, mapNoRows(err, "program", programID)
	}
	return s.applications.ListByProgram(ctx, programID)
}

// ListAll returns every application across programs, newest first.
func (s *ApplicationService) ListAll(ctx context.Context) ([]models.ApplicationView, error) {
	return s.applications.ListAll(ctx)
}

// ListMine returns the acting applicant's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, applicantID int) ([]models.Application, error) {
	return s.applications.ListByApplicant(ctx, applicantID)
}

// Update applies a partial edit to an application.
//
// Applicants may only edit the payload of their own application while
// it is still in submitted status; the new payload is re-validated
// against the program's form schema. Staff may additionally set score
// and notes at any point before the application reaches a terminal
// status, and may move a submitted application into under_review to
// mark screening as started. Terminal decisions are never set here;
// they go through Review or the selection record.
//
// Parameters:
//   - ctx: request context
//   - actor: the authenticated caller
//   - id: application ID
//   - req: fields to change; nil fields are left unchanged
//
// Returns:
//   - *models.Application: the updated application
//   - error: apperr.NotFound, apperr.Forbidden, or apperr.Invalid
func (s *ApplicationService) Update(ctx context.Context, actor Actor, id int, req *models.UpdateApplicationRequest) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "application", id)
	}

	staff := models.IsStaffRole(actor.Role)
	if !staff {
		if app.ApplicantID != actor.ID {
			return nil, apperr.Forbidden("application %d belongs to another applicant", id)
		}
		if app.Status != models.ApplicationSubmitted {
			return nil, apperr.Forbidden("application %d is already under review", id)
		}
		if req.Score != nil || req.Notes != nil {
			return nil, apperr.Forbidden("score and notes are staff-only fields")
		}
	} else if app.Status.IsTerminal() && (req.Score != nil || req.Notes != nil) {
		return nil, apperr.Conflict("application %d already has a final decision", id)
	}

	if req.Status != nil {
		if !staff {
			return nil, apperr.Forbidden("status is a staff-only field")
		}
		if *req.Status != models.ApplicationUnderReview {
			return nil, apperr.Invalid("status can only be set to %q here; decisions are recorded through review", models.ApplicationUnderReview)
		}
		if app.Status.IsTerminal() {
			return nil, apperr.Conflict("application %d already has a final decision", id)
		}
		if app.Status == models.ApplicationWithdrawn {
			return nil, apperr.Conflict("application %d was withdrawn", id)
		}
		app.Status = models.ApplicationUnderReview
	}

	if req.Payload != nil {
		program, err := s.programs.GetByID(ctx, app.ProgramID)
		if err != nil {
			return nil, mapNoRows(err, "program", app.ProgramID)
		}
		if err := validation.ValidatePayload(program.ApplicationForm, req.Payload); err != nil {
			return nil, err
		}
		if snapshot, ok := app.Payload["_applicant"]; ok {
			req.Payload["_applicant"] = snapshot
		}
		app.Payload = req.Payload
	}
	if req.Score != nil {
		app.Score = req.Score
	}
	if req.Notes != nil {
		app.Notes = req.Notes
	}

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Withdraw moves the applicant's own application to withdrawn.
//
// A terminal application (selected or rejected) can no longer be
// withdrawn; the decision stands.
//
// Parameters:
//   - ctx: request context
//   - actor: the authenticated caller, must own the application
//   - id: application ID
//
// Returns:
//   - *models.Application: the application in withdrawn status
//   - error: apperr.NotFound or apperr.Forbidden
func (s *ApplicationService) Withdraw(ctx context.Context, actor Actor, id int) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "application", id)
	}
	if app.ApplicantID != actor.ID {
		return nil, apperr.Forbidden("application %d belongs to another applicant", id)
	}
	if app.Status.IsTerminal() {
		return nil, apperr.Forbidden("application %d already has a final decision", id)
	}
	if app.Status == models.ApplicationWithdrawn {
		return app, nil
	}

	if err := s.applications.UpdateStatus(ctx, id, models.ApplicationWithdrawn); err != nil {
		return nil, err
	}
	app.Status = models.ApplicationWithdrawn
	return app, nil
}

// Review records a staff decision directly on an application.
//
// Only selected and rejected are valid decisions. Reviewing an
// application that already carries a terminal decision is a conflict;
// decisions are changed through the selection record, not by
// re-reviewing.
//
// Parameters:
//   - ctx: request context
//   - id: application ID
//   - req: the decision plus optional score and notes
//
// Returns:
//   - *models.Application: the application carrying the decision
//   - error: apperr.NotFound, apperr.Invalid, or apperr.Conflict
func (s *ApplicationService) Review(ctx context.Context, id int, req *models.ReviewRequest) (*models.Application, error) {
	if req.Decision != models.ApplicationSelected && req.Decision != models.ApplicationRejected {
		return nil, apperr.Invalid("decision must be %q or %q", models.ApplicationSelected, models.ApplicationRejected)
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "application", id)
	}
	if app.Status.IsTerminal() {
		return nil, apperr.Conflict("application %d already has a final decision", id)
	}
	if app.Status == models.ApplicationWithdrawn {
		return nil, apperr.Conflict("application %d was withdrawn", id)
	}

	if err := s.applications.UpdateReview(ctx, id, req.Decision, req.Score, req.Notes); err != nil {
		return nil, err
	}
	app.Status = req.Decision
	if req.Score != nil {
		app.Score = req.Score
	}
	if req.Notes != nil {
		app.Notes = req.Notes
	}
	return app, nil
}

// TogglePayment sets or clears the payment-received flag and adjusts
// the program's revenue by the program fee in the same transaction, so
// the ledger and the flag can never diverge.
//
// Payment only applies to selected applications. Setting the flag to
// its current value is a no-op and leaves revenue untouched.
//
// Parameters:
//   - ctx: request context
//   - id: application ID
//   - received: the new payment-received state
//
// Returns:
//   - *models.Application: the application with the new payment state
//   - error: apperr.NotFound or apperr.Conflict
func (s *ApplicationService) TogglePayment(ctx context.Context, id int, received bool) (*models.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "application", id)
	}
	if app.Status != models.ApplicationSelected {
		return nil, apperr.Conflict("application %d is not selected; payment does not apply", id)
	}
	if app.IsPaymentReceived == received {
		return app, nil
	}

	program, err := s.programs.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, mapNoRows(err, "program", app.ProgramID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txApps := repository.NewApplicationRepository(tx)
	txPrograms := repository.NewProgramRepository(tx)

	var receivedAt *time.Time
	if received {
		now := s.now()
		receivedAt = &now
	}
	if err := txApps.UpdatePayment(ctx, id, received, receivedAt); err != nil {
		return nil, err
	}

	if program.Fee > 0 {
		if received {
			err = txPrograms.IncrementRevenue(ctx, program.ID, program.Fee)
		} else {
			err = txPrograms.DecrementRevenue(ctx, program.ID, program.Fee)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	app.IsPaymentReceived = received
	app.PaymentReceivedAt = receivedAt
	return app, nil
}
