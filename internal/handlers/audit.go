package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
)

// auditTrail writes a best-effort audit entry for a completed state
// transition. A failed write never fails the request it describes; the
// trail is advisory, not transactional.
func auditTrail(c *fiber.Ctx, repo *repository.AuditRepository, actorID int, action, objectType string, objectID int) {
	_ = repo.Log(context.Background(), &models.AuditLog{
		ActorID:    &actorID,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   &objectID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})
}

// parseIDParam reads a positive integer route parameter.
func parseIDParam(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
