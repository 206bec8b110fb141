package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/models"
)

func (handler *Handler) PortalToday(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	jobs, err := handler.assignmentService.TodayJobs(c.UserContext(), viewer)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"today": handler.assignmentService.Today().Format(models.DateLayout),
		"jobs":  jobs,
	})
}

func (handler *Handler) CheckIn(c *fiber.Ctx) error {
	return handler.applyWorkerAction(c, models.AssignmentActionCheckIn)
}

func (handler *Handler) CheckOut(c *fiber.Ctx) error {
	return handler.applyWorkerAction(c, models.AssignmentActionCheckOut)
}

func (handler *Handler) ToggleComplete(c *fiber.Ctx) error {
	return handler.applyWorkerAction(c, models.AssignmentActionToggleComplete)
}

func (handler *Handler) applyWorkerAction(c *fiber.Ctx, action models.AssignmentAction) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	assignment, err := handler.assignmentService.ApplyWorkerAction(c.UserContext(), viewer, c.Params("id"), action)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.metrics.AssignmentAction(string(action))
	return c.JSON(fiber.Map{"assignment": assignment})
}

func (handler *Handler) PortalSchedule(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	schedule, err := handler.assignmentService.WeekSchedule(c.UserContext(), viewer, c.Query("week"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(schedule)
}

func (handler *Handler) PortalProfile(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	overview, err := handler.profileService.Overview(c.UserContext(), viewer)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(overview)
}

func (handler *Handler) UpdatePortalProfile(c *fiber.Ctx) error {
	return handler.updateOwnProfile(c)
}
