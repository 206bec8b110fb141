package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/services"
)

// CreateAssignments fans one form out into a row per selected worker.
func (handler *Handler) CreateAssignments(c *fiber.Ctx) error {
	input := services.AssignmentCreateInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	assignments, err := handler.assignmentService.CreateAssignments(c.UserContext(), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignments": assignments})
}

func (handler *Handler) UpdateAssignment(c *fiber.Ctx) error {
	input := services.AssignmentUpdateInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	assignment, err := handler.assignmentService.UpdateAssignment(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"assignment": assignment})
}

func (handler *Handler) DeleteAssignment(c *fiber.Ctx) error {
	if err := handler.assignmentService.DeleteAssignment(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
