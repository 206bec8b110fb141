package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/services"
)

func (handler *Handler) AdminDashboard(c *fiber.Ctx) error {
	dashboard, err := handler.dashboardService.Load(c.UserContext())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(dashboard)
}

func (handler *Handler) AdminCalendar(c *fiber.Ctx) error {
	calendar, err := handler.assignmentService.MonthCalendar(c.UserContext(), c.Query("month"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(calendar)
}

func (handler *Handler) AdminSettings(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	profile, err := handler.profileService.FindProfile(c.UserContext(), viewer.ProfileID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}

func (handler *Handler) UpdateAdminSettings(c *fiber.Ctx) error {
	return handler.updateOwnProfile(c)
}

func (handler *Handler) updateOwnProfile(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := services.ProfileUpdateInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	profile, err := handler.profileService.UpdateOwnProfile(c.UserContext(), viewer, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}
