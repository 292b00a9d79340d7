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
)

// ProgramService manages the program catalog and keeps each program's
// persisted status aligned with the status derived from its schedule.
//
// Status synchronization is read-triggered: every Get and List recomputes
// the status from the program dates and writes the result back when it
// drifted. A failed write-back is logged and swallowed so that a read
// never fails because of it; the caller still receives the freshly
// computed status.
type ProgramService struct {
	db       database.DB
	programs *repository.ProgramRepository
	log      logger.Logger
	now      func() time.Time
}

// NewProgramService creates a ProgramService backed by the given database.
//
// Parameters:
//   - db: database handle used for reads, writes and status write-backs
//   - log: structured logger for write-back failures and reconcile runs
//
// Returns:
//   - *ProgramService: the configured service using wall-clock time in KST
func NewProgramService(db database.DB, log logger.Logger) *ProgramService {
	return &ProgramService{
		db:       db,
		programs: repository.NewProgramRepository(db),
		log:      log,
		now:      status.Now,
	}
}

// WithClock replaces the service's time source. Tests use it to pin the
// clock when exercising date-driven status transitions.
func (s *ProgramService) WithClock(now func() time.Time) *ProgramService {
	s.now = now
	return s
}

// Create validates and inserts a new program. The initial status is
// derived from the schedule rather than taken from the client, so a
// program created mid-window starts as application_open immediately.
//
// Parameters:
//   - ctx: request context
//   - organizerID: ID of the admin or operator creating the program
//   - req: program fields including the application and activity windows
//
// Returns:
//   - *models.Program: the created program with ID and derived status
//   - error: apperr.Invalid when dates or fields are inconsistent
func (s *ProgramService) Create(ctx context.Context, organizerID int, req *models.CreateProgramRequest) (*models.Program, error) {
	if err := validateProgramFields(req.Title, req.Fee, req.MaxParticipants); err != nil {
		return nil, err
	}
	if err := validateProgramDates(req.ApplyStart, req.ApplyEnd, req.ProgramStart, req.ProgramEnd); err != nil {
		return nil, err
	}

	program := &models.Program{
		Title:           req.Title,
		Description:     req.Description,
		Summary:         req.Summary,
		Fee:             req.Fee,
		MaxParticipants: req.MaxParticipants,
		ApplyStart:      req.ApplyStart,
		ApplyEnd:        req.ApplyEnd,
		ProgramStart:    req.ProgramStart,
		ProgramEnd:      req.ProgramEnd,
		ApplicationForm: req.ApplicationForm,
		OrganizerID:     organizerID,
		IsActive:        true,
	}
	program.Status = status.Calculate(program, s.now())

	if err := s.programs.Create(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

// Get fetches a single program and synchronizes its status.
//
// Parameters:
//   - ctx: request context
//   - id: program ID
//
// Returns:
//   - *models.Program: the program with its current derived status
//   - error: apperr.NotFound when no active program has this ID
func (s *ProgramService) Get(ctx context.Context, id int) (*models.Program, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "program", id)
	}
	s.syncStatus(ctx, program)
	return program, nil
}

// List returns all active programs with synchronized statuses.
//
// The status filter is applied after synchronization so that a program
// whose stored status just drifted out of the requested state is not
// returned under its stale label.
//
// Parameters:
//   - ctx: request context
//   - statusFilter: canonical status to filter by, or "" for all
//
// Returns:
//   - []models.Program: matching programs, newest first
//   - error: database errors only; an empty result is not an error
func (s *ProgramService) List(ctx context.Context, statusFilter string) ([]models.Program, error) {
	programs, err := s.programs.List(ctx, "")
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Program, 0, len(programs))
	for i := range programs {
		s.syncStatus(ctx, &programs[i])
		if statusFilter == "" || string(programs[i].Status) == statusFilter {
			filtered = append(filtered, programs[i])
		}
	}
	return filtered, nil
}

// Update applies a partial update to a program. Status and revenue are
// never client-writable: status comes from the calculator and revenue
// only moves through payment confirmation.
//
// Parameters:
//   - ctx: request context
//   - id: program ID
//   - req: fields to change; nil pointers leave the current value
//
// Returns:
//   - *models.Program: the updated program with a freshly derived status
//   - error: apperr.NotFound or apperr.Invalid
func (s *ProgramService) Update(ctx context.Context, id int, req *models.UpdateProgramRequest) (*models.Program, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "program", id)
	}

	if req.Title != nil {
		program.Title = *req.Title
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	if req.Summary != nil {
		program.Summary = *req.Summary
	}
	if req.Fee != nil {
		program.Fee = *req.Fee
	}
	if req.MaxParticipants != nil {
		program.MaxParticipants = *req.MaxParticipants
	}
	if req.ApplyStart != nil {
		program.ApplyStart = *req.ApplyStart
	}
	if req.ApplyEnd != nil {
		program.ApplyEnd = *req.ApplyEnd
	}
	if req.ProgramStart != nil {
		program.ProgramStart = req.ProgramStart
	}
	if req.ProgramEnd != nil {
		program.ProgramEnd = req.ProgramEnd
	}
	if req.ApplicationForm != nil {
		program.ApplicationForm = req.ApplicationForm
	}

	if err := validateProgramFields(program.Title, program.Fee, program.MaxParticipants); err != nil {
		return nil, err
	}
	if err := validateProgramDates(program.ApplyStart, program.ApplyEnd, program.ProgramStart, program.ProgramEnd); err != nil {
		return nil, err
	}

	if err := s.programs.Update(ctx, program); err != nil {
		return nil, mapNoRows(err, "program", id)
	}
	s.syncStatus(ctx, program)
	return program, nil
}

// Archive marks a program as archived. Archived is terminal: the status
// calculator never moves an archived program back onto the date track.
//
// Parameters:
//   - ctx: request context
//   - id: program ID
//
// Returns:
//   - error: apperr.NotFound when no active program has this ID
func (s *ProgramService) Archive(ctx context.Context, id int) error {
	if _, err := s.programs.GetByID(ctx, id); err != nil {
		return mapNoRows(err, "program", id)
	}
	return s.programs.Archive(ctx, id)
}

// Delete soft-deletes a program. The row stays for audit history but
// disappears from every listing and lookup.
//
// Parameters:
//   - ctx: request context
//   - id: program ID
//
// Returns:
//   - error: apperr.NotFound when no active program has this ID
func (s *ProgramService) Delete(ctx context.Context, id int) error {
	if _, err := s.programs.GetByID(ctx, id); err != nil {
		return mapNoRows(err, "program", id)
	}
	return s.programs.SoftDelete(ctx, id)
}

// Reconcile sweeps every active program and persists any status that
// drifted from its date-derived value. The reconcile job runs it on a
// schedule so statuses stay fresh even for programs nobody reads.
//
// Parameters:
//   - ctx: job context
//
// Returns:
//   - int: number of programs whose status was updated
//   - error: the first listing error; per-program write failures are
//     logged and skipped so one bad row cannot stall the sweep
func (s *ProgramService) Reconcile(ctx context.Context) (int, error) {
	programs, err := s.programs.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	updated := 0
	for i := range programs {
		computed := status.Calculate(&programs[i], now)
		if computed == programs[i].Status {
			continue
		}
		if err := s.programs.UpdateStatus(ctx, programs[i].ID, computed); err != nil {
			s.log.WithError(err).Warn("failed to persist reconciled status", map[string]interface{}{
				"program_id": programs[i].ID,
				"status":     computed,
			})
			continue
		}
		updated++
	}
	return updated, nil
}

// syncStatus recomputes the program's status and writes it back when it
// drifted. The in-memory program always carries the computed status even
// if the write-back fails; reads must not break because of it.
func (s *ProgramService) syncStatus(ctx context.Context, program *models.Program) {
	computed := status.Calculate(program, s.now())
	if computed == program.Status {
		return
	}
	stored := program.Status
	program.Status = computed
	if err := s.programs.UpdateStatus(ctx, program.ID, computed); err != nil {
		s.log.WithError(err).Warn("failed to persist synchronized program status", map[string]interface{}{
			"program_id": program.ID,
			"stored":     stored,
			"computed":   computed,
		})
	}
}

func validateProgramFields(title string, fee, maxParticipants int) error {
	if title == "" {
		return apperr.Invalid("title is required")
	}
	if fee < 0 {
		return apperr.Invalid("fee must not be negative")
	}
	if maxParticipants < 0 {
		return apperr.Invalid("max participants must not be negative")
	}
	return nil
}

func validateProgramDates(applyStart, applyEnd time.Time, programStart, programEnd *time.Time) error {
	if applyStart.IsZero() || applyEnd.IsZero() {
		return apperr.Invalid("application window dates are required")
	}
	if applyEnd.Before(applyStart) {
		return apperr.Invalid("application window end must not precede its start")
	}
	if programStart != nil && programEnd != nil && programEnd.Before(*programStart) {
		return apperr.Invalid("program end date must not precede its start")
	}
	return nil
}
