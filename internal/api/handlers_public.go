package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/metrics"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/services"
)

const rateLimitedMessage = "Too many requests. Please try again later."

type phaseOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Landing serves the data behind the public bid request form.
func (handler *Handler) Landing(c *fiber.Ctx) error {
	phases := make([]phaseOption, 0, len(models.AllPhases()))
	for _, phase := range models.AllPhases() {
		phases = append(phases, phaseOption{Value: string(phase), Label: phase.Label()})
	}
	return c.JSON(fiber.Map{
		"phases": phases,
		"limits": services.PublicLeadFormLimits(),
	})
}

func (handler *Handler) SubmitLead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	key := clientKey(c)
	if handler.leadLimiter.Blocked(ctx, key) {
		handler.metrics.LeadSubmission(metrics.LeadLimited)
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(handler.leadLimiter.Window().Seconds())))
		return apiError(c, fiber.StatusTooManyRequests, rateLimitedMessage)
	}
	handler.leadLimiter.Record(ctx, key)

	input := services.LeadSubmissionInput{}
	if err := parseBody(c, &input); err != nil {
		handler.metrics.LeadSubmission(metrics.LeadInvalid)
		return apiError(c, fiber.StatusBadRequest, services.LeadInvalidMessage)
	}

	leadID, err := handler.leadService.SubmitPublicLead(ctx, input)
	if validationErr, ok := services.AsValidationError(err); ok {
		handler.metrics.LeadSubmission(metrics.LeadInvalid)
		return validationError(c, services.LeadInvalidMessage, validationErr)
	}
	if err != nil {
		handler.metrics.LeadSubmission(metrics.LeadFailed)
		return apiError(c, fiber.StatusInternalServerError, services.LeadSaveFailedMessage)
	}

	handler.metrics.LeadSubmission(metrics.LeadCreated)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": leadID})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
