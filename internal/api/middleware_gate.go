package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/services"
)

// Gate runs before every route. It resolves the caller only for categories
// that depend on identity and answers with either the next handler or a 303.
func (handler *Handler) Gate(c *fiber.Ctx) error {
	requestPath := c.Path()
	if !services.GateApplies(requestPath) {
		return c.Next()
	}

	category := services.ClassifyRoute(requestPath)
	authenticated := false
	role := models.RoleWorker
	if category.NeedsIdentity() {
		identity := handler.resolveIdentity(c)
		authenticated = identity.authenticated
		role = identity.viewer.Role
		handler.refreshSession(c, identity)
	}

	decision := services.DecideRouteAccess(requestPath, authenticated, role)
	handler.metrics.GateDecision(string(decision.Action))
	if decision.Action == services.GatePass {
		return c.Next()
	}
	return c.Redirect(decision.Location, fiber.StatusSeeOther)
}

// AuthRequired guards the JSON endpoints outside /admin and /portal that still
// need a signed-in caller.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	identity := handler.resolveIdentity(c)
	if !identity.authenticated {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	handler.refreshSession(c, identity)
	return c.Next()
}
