package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/middleware"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/services"
)

// ProgramHandler handles the program catalog endpoints: CRUD, archive,
// per-program application listings, and CSV export.
type ProgramHandler struct {
	programs     *services.ProgramService
	applications *services.ApplicationService
	auditRepo    *repository.AuditRepository
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programs *services.ProgramService, applications *services.ApplicationService, auditRepo *repository.AuditRepository) *ProgramHandler {
	return &ProgramHandler{
		programs:     programs,
		applications: applications,
		auditRepo:    auditRepo,
	}
}

// List returns active programs, optionally filtered by status.
//
// Query Parameters:
//   - status: canonical program status to filter by (optional)
func (h *ProgramHandler) List(c *fiber.Ctx) error {
	programs, err := h.programs.List(context.Background(), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(programs)
}

// Get returns a single program with a synchronized status.
func (h *ProgramHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	program, err := h.programs.Get(context.Background(), id)
	if err != nil {
		return err
	}
	return c.JSON(program)
}

// Create adds a new program owned by the acting operator.
func (h *ProgramHandler) Create(c *fiber.Ctx) error {
	var req models.CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	actorID := middleware.ActorID(c)
	program, err := h.programs.Create(context.Background(), actorID, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, actorID, "CREATE_PROGRAM", "program", program.ID)
	return c.Status(fiber.StatusCreated).JSON(program)
}

// Update applies a partial edit to a program.
func (h *ProgramHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	program, err := h.programs.Update(context.Background(), id, &req)
	if err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "UPDATE_PROGRAM", "program", id)
	return c.JSON(program)
}

// Archive marks a program as archived.
func (h *ProgramHandler) Archive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.programs.Archive(context.Background(), id); err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "ARCHIVE_PROGRAM", "program", id)
	return c.JSON(fiber.Map{"ok": true})
}

// Delete soft-deletes a program.
func (h *ProgramHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.programs.Delete(context.Background(), id); err != nil {
		return err
	}

	auditTrail(c, h.auditRepo, middleware.ActorID(c), "DELETE_PROGRAM", "program", id)
	return c.JSON(fiber.Map{"ok": true})
}

// Applications lists a program's applications for staff.
func (h *ProgramHandler) Applications(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	views, err := h.applications.ListForProgram(context.Background(), id)
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// ExportApplicationsCSV streams a program's applications as a CSV file
// for offline processing by village office staff.
//
// Response Headers:
//   - Content-Type: text/csv
//   - Content-Disposition: attachment with a per-program filename
func (h *ProgramHandler) ExportApplicationsCSV(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	views, err := h.applications.ListForProgram(context.Background(), id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "applicant_name", "applicant_email", "status", "score", "payment_received", "submitted_at"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, v := range views {
		score := ""
		if v.Score != nil {
			score = strconv.FormatFloat(*v.Score, 'f', -1, 64)
		}
		record := []string{
			strconv.Itoa(v.ID),
			v.ApplicantName,
			v.ApplicantEmail,
			string(v.Status),
			score,
			strconv.FormatBool(v.IsPaymentReceived),
			v.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="program_%d_applications.csv"`, id))
	return c.Send(buf.Bytes())
}
