package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/services"
)

// ApplicationHandler handles the application lifecycle endpoints:
// submission, edits, withdrawal, review, and payment confirmation.
type ApplicationHandler struct {
	applications *services.ApplicationService
	auditRepo    *repository.AuditRepository
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(applications *services.ApplicationService, auditRepo *repository.AuditRepository) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		auditRepo:    auditRepo,
	}
}

func actor(c *fiber.Ctx) services.Actor {
	return services.Actor{
		ID:   middleware.ActorID(c),
		Role: middleware.ActorRole(c),
	}
}

// Submit creates an application for the acting applicant.
//
// Request Body: {"program_id": ..., "payload": {...}}
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var req models.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	actorID := middleware.ActorID(c)
	app, err := h.applications.Submit(context.Background(), actorID, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, actorID, "SUBMIT_APPLICATION", "application", app.ID)
	return c.Status(fiber.StatusCreated).JSON(app)
}

// ListAll returns every application for staff.
func (h *ApplicationHandler) ListAll(c *fiber.Ctx) error {
	views, err := h.applications.ListAll(context.Background())
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// ListMine returns the acting applicant's own applications.
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	apps, err := h.applications.ListMine(context.Background(), middleware.ActorID(c))
	if err != nil {
		return err
	}
	return c.JSON(apps)
}

// Get returns a single application, subject to ownership rules.
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	app, err := h.applications.Get(context.Background(), actor(c), id)
	if err != nil {
		return err
	}
	return c.JSON(app)
}

// Update applies a partial edit to an application.
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	app, err := h.applications.Update(context.Background(), actor(c), id, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "UPDATE_APPLICATION", "application", id)
	return c.JSON(app)
}

// Withdraw moves the applicant's own application to withdrawn.
func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	app, err := h.applications.Withdraw(context.Background(), actor(c), id)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "WITHDRAW_APPLICATION", "application", id)
	return c.JSON(app)
}

// Review records a staff decision directly on an application.
//
// Request Body: {"decision": "selected"|"rejected", "score": ..., "notes": ...}
func (h *ApplicationHandler) Review(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	app, err := h.applications.Review(context.Background(), id, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "REVIEW_APPLICATION", "application", id)
	return c.JSON(app)
}

// Payment toggles the payment-received flag, adjusting program revenue.
//
// Request Body: {"received": true|false}
func (h *ApplicationHandler) Payment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	app, err := h.applications.TogglePayment(context.Background(), id, req.Received)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "TOGGLE_PAYMENT", "application", id)
	return c.JSON(app)
}
