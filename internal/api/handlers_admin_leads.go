package api

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (handler *Handler) ListLeads(c *fiber.Ctx) error {
	leads, err := handler.leadService.ListLeads(c.UserContext(), c.Query("status"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"leads": leads})
}

// CreateLead records a lead taken over the phone or in person.
func (handler *Handler) CreateLead(c *fiber.Ctx) error {
	input := services.LeadInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	lead, err := handler.leadService.CreateManualLead(c.UserContext(), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lead": lead})
}

func (handler *Handler) UpdateLead(c *fiber.Ctx) error {
	input := services.LeadInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	lead, err := handler.leadService.UpdateLead(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"lead": lead})
}

func (handler *Handler) ChangeLeadStatus(c *fiber.Ctx) error {
	input := statusInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	lead, err := handler.leadService.ChangeLeadStatus(c.UserContext(), c.Params("id"), input.Status)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"lead": lead})
}

func (handler *Handler) DeleteLead(c *fiber.Ctx) error {
	if err := handler.leadService.DeleteLead(c.UserContext(), c.Params("id")); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ExportLeads(c *fiber.Ctx) error {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "unsupported export format")
	}
	filter, err := services.ParseLeadExportFilter(c.Query("status"), c.Query("from"), c.Query("to"), handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, exportFilterMessage(err))
	}

	rows, err := handler.exportService.BuildRows(c.UserContext(), filter)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	filename := fmt.Sprintf("crewdesk-leads-%s.%s", handler.now().In(handler.location).Format("2006-01-02"), format)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	if format == services.ExportFormatXLSX {
		payload, err := services.BuildLeadsXLSX(rows)
		if err != nil {
			return handler.respondServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(payload)
	}

	var output bytes.Buffer
	if err := services.WriteLeadsCSV(&output, rows); err != nil {
		return handler.respondServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(output.Bytes())
}

func exportFilterMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrExportFromDateInvalid):
		return "invalid from date"
	case errors.Is(err, services.ErrExportToDateInvalid):
		return "invalid to date"
	case errors.Is(err, services.ErrExportRangeInvalid):
		return "from date must not be after to date"
	case errors.Is(err, services.ErrExportStatusInvalid):
		return "invalid status"
	default:
		return "invalid export filter"
	}
}
