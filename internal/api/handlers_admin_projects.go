package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/services"
)

type statusInput struct {
	Status string `json:"status" form:"status"`
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	projects, err := handler.projectService.ListProjects(c.UserContext())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := services.ProjectInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	project, err := handler.projectService.CreateProject(c.UserContext(), viewer, input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
}

func (handler *Handler) UpdateProject(c *fiber.Ctx) error {
	input := services.ProjectInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	project, err := handler.projectService.UpdateProject(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

func (handler *Handler) ChangeProjectStatus(c *fiber.Ctx) error {
	input := statusInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	project, err := handler.projectService.ChangeProjectStatus(c.UserContext(), c.Params("id"), input.Status)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

func (handler *Handler) DeleteProject(c *fiber.Ctx) error {
	if err := handler.projectService.DeleteProject(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
