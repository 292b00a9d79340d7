package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/repository"
)

// DashboardHandler serves the operator dashboard aggregates and the
// recent audit trail.
type DashboardHandler struct {
	statsRepo *repository.StatsRepository
	auditRepo *repository.AuditRepository
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(statsRepo *repository.StatsRepository, auditRepo *repository.AuditRepository) *DashboardHandler {
	return &DashboardHandler{
		statsRepo: statsRepo,
		auditRepo: auditRepo,
	}
}

// Stats returns the system-wide dashboard counters.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.statsRepo.GetDashboardStats(context.Background())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// ProgramStats returns the per-program application breakdown.
func (h *DashboardHandler) ProgramStats(c *fiber.Ctx) error {
	stats, err := h.statsRepo.ListProgramStats(context.Background())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// RecentActivity returns the most recent audit entries, newest first.
func (h *DashboardHandler) RecentActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	entries, err := h.auditRepo.ListRecent(context.Background(), limit)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}
