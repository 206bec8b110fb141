package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/models"
	"go.uber.org/zap"
)

func (handler *Handler) setSessionCookie(c *fiber.Ctx, profile models.Profile) error {
	token, expiresAt, err := handler.authService.IssueSession(profile)
	if err != nil {
		return err
	}
	handler.writeSessionCookie(c, token, expiresAt)
	return nil
}

func (handler *Handler) writeSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  expiresAt,
	})
}

func (handler *Handler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// refreshSession re-issues the cookie once less than half of its lifetime is
// left, on passes and redirects alike.
func (handler *Handler) refreshSession(c *fiber.Ctx, identity requestIdentity) {
	if !identity.authenticated || !identity.claims.RefreshDue(handler.now()) {
		return
	}
	token, expiresAt, err := handler.tokens.IssueSession(identity.viewer.ProfileID, string(identity.viewer.Role))
	if err != nil {
		handler.logger.Warn("session refresh failed", zap.Error(err))
		return
	}
	handler.writeSessionCookie(c, token, expiresAt)
}
