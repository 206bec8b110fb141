package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/security"
	"github.com/terraincognita07/crewdesk/internal/services"
	"go.uber.org/zap"
)

const (
	sessionCookieName  = "crewdesk_session"
	contextIdentityKey = "current_identity"
)

// requestIdentity is resolved at most once per request and shared by the
// gate and the handlers behind it.
type requestIdentity struct {
	authenticated bool
	viewer        services.Viewer
	claims        security.SessionClaims
}

func (handler *Handler) resolveIdentity(c *fiber.Ctx) requestIdentity {
	if cached, ok := c.Locals(contextIdentityKey).(*requestIdentity); ok {
		return *cached
	}

	identity := handler.lookupIdentity(c)
	c.Locals(contextIdentityKey, &identity)
	return identity
}

func (handler *Handler) lookupIdentity(c *fiber.Ctx) requestIdentity {
	rawToken := strings.TrimSpace(c.Cookies(sessionCookieName))
	if rawToken == "" {
		return requestIdentity{}
	}
	claims, err := handler.tokens.ParseSession(rawToken)
	if err != nil {
		return requestIdentity{}
	}

	role, err := handler.authService.RoleOf(c.UserContext(), claims.ProfileID)
	switch {
	case errors.Is(err, services.ErrProfileNotFound):
		return requestIdentity{}
	case err != nil:
		// Never fall back to admin.
		handler.logger.Warn("role lookup failed, treating caller as worker",
			zap.String("profile_id", claims.ProfileID),
			zap.Error(err),
		)
		role = models.RoleWorker
	}

	return requestIdentity{
		authenticated: true,
		viewer:        services.Viewer{ProfileID: claims.ProfileID, Role: role},
		claims:        claims,
	}
}

func currentViewer(c *fiber.Ctx) (services.Viewer, bool) {
	identity, ok := c.Locals(contextIdentityKey).(*requestIdentity)
	if !ok || !identity.authenticated {
		return services.Viewer{}, false
	}
	return identity.viewer, true
}
