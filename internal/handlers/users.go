package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/services"
)

// UserHandler handles admin account management.
type UserHandler struct {
	users     *services.UserService
	auditRepo *repository.AuditRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, auditRepo *repository.AuditRepository) *UserHandler {
	return &UserHandler{
		users:     users,
		auditRepo: auditRepo,
	}
}

// Create registers a new account.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.Create(context.Background(), &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "CREATE_USER", "user", user.ID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// List returns all active accounts.
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(context.Background())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Deactivate soft-deletes an account.
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	actorID := middleware.ActorID(c)
	if err := h.users.Deactivate(context.Background(), actorID, id); err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, actorID, "DEACTIVATE_USER", "user", id)
	return c.JSON(fiber.Map{"ok": true})
}
