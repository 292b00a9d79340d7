package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/services"
)

// SelectionHandler handles reviewer decision records.
type SelectionHandler struct {
	selections *services.SelectionService
	auditRepo  *repository.AuditRepository
}

// NewSelectionHandler creates a new SelectionHandler.
func NewSelectionHandler(selections *services.SelectionService, auditRepo *repository.AuditRepository) *SelectionHandler {
	return &SelectionHandler{
		selections: selections,
		auditRepo:  auditRepo,
	}
}

// Create records a decision for an application.
//
// Request Body: {"application_id": ..., "selected": ..., "reason": ..., "criteria": {...}}
func (h *SelectionHandler) Create(c *fiber.Ctx) error {
	var req models.CreateSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reviewerID := middleware.ActorID(c)
	sel, err := h.selections.Create(context.Background(), reviewerID, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, reviewerID, "CREATE_SELECTION", "selection", sel.ID)
	return c.Status(fiber.StatusCreated).JSON(sel)
}

// Get returns a single selection record.
func (h *SelectionHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	sel, err := h.selections.Get(context.Background(), id)
	if err != nil {
		return err
	}
	return c.JSON(sel)
}

// Update edits a selection record, keeping the application status in step.
func (h *SelectionHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sel, err := h.selections.Update(context.Background(), id, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "UPDATE_SELECTION", "selection", id)
	return c.JSON(sel)
}
