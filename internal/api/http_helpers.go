package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/services"
	"go.uber.org/zap"
)

func redirectOrJSON(c *fiber.Ctx, path string) error {
	if isHTMX(c) {
		c.Set("HX-Redirect", path)
		return c.SendStatus(fiber.StatusOK)
	}
	if acceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true, "redirect": path})
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, message string, err *services.ValidationError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  message,
		"fields": err.FieldErrors,
	})
}

func acceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get("Accept")), "application/json")
}

func isHTMX(c *fiber.Ctx) bool {
	return strings.EqualFold(c.Get("HX-Request"), "true")
}

// parseBody accepts JSON and form bodies alike.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

func clientKey(c *fiber.Ctx) string {
	return strings.TrimSpace(c.IP())
}

// respondServiceError maps the service sentinels onto status codes. Anything
// unrecognised is logged and answered with the generic message.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	if validationErr, ok := services.AsValidationError(err); ok {
		return validationError(c, "Please check your inputs and try again.", validationErr)
	}

	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrLeadNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrAssignmentForbidden),
		errors.Is(err, services.ErrProfileNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, services.ErrInvalidStatus):
		return apiError(c, fiber.StatusUnprocessableEntity, "invalid status")
	case errors.Is(err, services.ErrInvalidDate):
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	case errors.Is(err, services.ErrCannotDeleteSelf):
		return apiError(c, fiber.StatusConflict, "you cannot delete your own profile")
	}

	handler.logger.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return apiError(c, fiber.StatusInternalServerError, services.GenericFailureMessage)
}
