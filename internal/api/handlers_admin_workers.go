package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/services"
)

// ListWorkers returns every profile, admins included, so roles can be edited.
func (handler *Handler) ListWorkers(c *fiber.Ctx) error {
	profiles, err := handler.profileService.ListProfiles(c.UserContext())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"workers": profiles})
}

func (handler *Handler) UpdateWorker(c *fiber.Ctx) error {
	input := services.WorkerUpdateInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.profileService.UpdateWorker(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"worker": profile})
}

func (handler *Handler) DeleteWorker(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if err := handler.profileService.DeleteWorker(c.UserContext(), viewer, c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
