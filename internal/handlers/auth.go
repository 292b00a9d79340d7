package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/services"
)

// AuthHandler handles login, logout, and the current-user endpoint.
type AuthHandler struct {
	store       *session.Store
	authService *services.AuthService
	auditRepo   *repository.AuditRepository
}

// NewAuthHandler creates a new AuthHandler.
//
// Parameters:
//   - store: session store backing the auth cookie
//   - authService: credential validation service
//   - auditRepo: audit trail for login events
//
// Returns:
//   - *AuthHandler: initialized handler instance
func NewAuthHandler(store *session.Store, authService *services.AuthService, auditRepo *repository.AuditRepository) *AuthHandler {
	return &AuthHandler{
		store:       store,
		authService: authService,
		auditRepo:   auditRepo,
	}
}

// Login authenticates credentials and creates a session.
//
// Request Body: {"email": ..., "password": ...}
//
// Side Effects:
//   - Creates a session with user_id, user_role, user_name on success
//   - Writes a LOGIN audit entry
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := context.Background()
	user, err := h.authService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("user_id", user.ID)
	sess.Set("user_role", user.Role)
	sess.Set("user_name", user.Name)
	if err := sess.Save(); err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, user.ID, "LOGIN", "user", user.ID)

	return c.JSON(user)
}

// Logout destroys the current session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	userID, _ := sess.Get("user_id").(int)
	if err := sess.Destroy(); err != nil {
		return err
	}

	if userID != 0 {
		auditTrail(c, h.auditRepo, userID, "LOGOUT", "user", userID)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Me returns the identity attached to the current session.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"id":   middleware.ActorID(c),
		"role": middleware.ActorRole(c),
		"name": c.Locals("user_name"),
	})
}

