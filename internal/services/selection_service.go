package services

import (
	"context"

	"github.com/maeulsoft/programhub/internal/apperr"
	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/logger"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
)

// SelectionService manages reviewer decision records. Every write that
// changes the selected flag also updates the parent application's status
// in the same transaction, so a selection record and its application can
// never disagree about the outcome.
type SelectionService struct {
	db           database.DB
	selections   *repository.SelectionRepository
	applications *repository.ApplicationRepository
	log          logger.Logger
}

// NewSelectionService creates a SelectionService backed by the given
// database.
func NewSelectionService(db database.DB, log logger.Logger) *SelectionService {
	return &SelectionService{
		db:           db,
		selections:   repository.NewSelectionRepository(db),
		applications: repository.NewApplicationRepository(db),
		log:          log,
	}
}

// Create records a reviewer's decision for an application and moves the
// application to the matching terminal status.
//
// Parameters:
//   - ctx: request context
//   - reviewerID: ID of the staff member making the decision
//   - req: the application, the decision, and the reasoning
//
// Returns:
//   - *models.Selection: the stored decision record
//   - error: apperr.NotFound when the application does not exist,
//     apperr.Conflict when it was withdrawn or already decided
func (s *SelectionService) Create(ctx context.Context, reviewerID int, req *models.CreateSelectionRequest) (*models.Selection, error) {
	app, err := s.applications.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, mapNoRows(err, "application", req.ApplicationID)
	}
	if app.Status == models.ApplicationWithdrawn {
		return nil, apperr.Conflict("application %d was withdrawn", app.ID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txSelections := repository.NewSelectionRepository(tx)
	txApplications := repository.NewApplicationRepository(tx)

	exists, err := txSelections.ExistsForApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("application %d already has a selection record", app.ID)
	}

	sel := &models.Selection{
		ApplicationID: app.ID,
		Selected:      req.Selected,
		Reason:        req.Reason,
		ReviewerID:    reviewerID,
		Criteria:      req.Criteria,
	}
	if err := txSelections.Create(ctx, sel); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("application %d already has a selection record", app.ID)
		}
		return nil, err
	}

	if err := txApplications.UpdateStatus(ctx, app.ID, decisionStatus(req.Selected)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sel, nil
}

// Get returns a single selection record.
func (s *SelectionService) Get(ctx context.Context, id int) (*models.Selection, error) {
	sel, err := s.selections.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "selection", id)
	}
	return sel, nil
}

// Update edits an existing selection record. When the selected flag
// flips, the parent application's status follows it in the same
// transaction. A selection whose application already collected payment
// cannot be flipped to not-selected until the payment is cleared, or
// the revenue ledger would go stale.
//
// Parameters:
//   - ctx: request context
//   - id: selection ID
//   - req: fields to change; nil fields are left unchanged
//
// Returns:
//   - *models.Selection: the updated record with a refreshed review time
//   - error: apperr.NotFound or apperr.Conflict
func (s *SelectionService) Update(ctx context.Context, id int, req *models.UpdateSelectionRequest) (*models.Selection, error) {
	sel, err := s.selections.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "selection", id)
	}

	if req.Selected != nil && *req.Selected != sel.Selected && !*req.Selected {
		app, err := s.applications.GetByID(ctx, sel.ApplicationID)
		if err != nil {
			return nil, mapNoRows(err, "application", sel.ApplicationID)
		}
		if app.IsPaymentReceived {
			return nil, apperr.Conflict("application %d has a confirmed payment; clear it before deselecting", app.ID)
		}
	}

	if req.Selected != nil {
		sel.Selected = *req.Selected
	}
	if req.Reason != nil {
		sel.Reason = *req.Reason
	}
	if req.Criteria != nil {
		sel.Criteria = req.Criteria
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txSelections := repository.NewSelectionRepository(tx)
	txApplications := repository.NewApplicationRepository(tx)

	if err := txSelections.Update(ctx, sel); err != nil {
		return nil, err
	}
	if err := txApplications.UpdateStatus(ctx, sel.ApplicationID, decisionStatus(sel.Selected)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return sel, nil
}

// decisionStatus maps a selection outcome to the application status it
// implies.
func decisionStatus(selected bool) models.ApplicationStatus {
	if selected {
		return models.ApplicationSelected
	}
	return models.ApplicationRejected
}
