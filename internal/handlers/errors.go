// Package handlers implements the HTTP layer of ProgramHub's JSON API.
// Handlers decode requests, call services, and translate business errors
// into HTTP responses; they hold no business rules of their own.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/maeulsoft/programhub/internal/apperr"
	"github.com/maeulsoft/programhub/internal/logger"
)

// ErrorHandler builds the app-wide Fiber error handler. Business errors
// map to their HTTP status with the message exposed; anything else is a
// logged 500 with a generic body so internals never leak to clients.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return c.Status(apperr.HTTPStatus(appErr)).JSON(fiber.Map{
				"error": appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}

		log.WithError(err).Error("unhandled error", map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
