package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/services"
)

const authCallbackErrorPath = services.LoginPath + "?error=auth_callback_error"

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"redirect": services.SanitizeRedirectPath(c.Query("redirect"), ""),
		"error":    strings.TrimSpace(c.Query("error")),
	})
}

func (handler *Handler) ShowSignupPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields": []string{"email", "password", "confirm_password", "full_name"},
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	key := clientKey(c)
	if handler.authLimiter.Blocked(ctx, key) {
		return handler.respondAuthLimited(c)
	}

	input := services.LoginInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.authService.SignIn(ctx, input)
	if validationErr, ok := services.AsValidationError(err); ok {
		return validationError(c, "Please check your inputs and try again.", validationErr)
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		handler.authLimiter.Record(ctx, key)
		return apiError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.authLimiter.Reset(ctx, key)

	if err := handler.setSessionCookie(c, profile); err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondSignedIn(c, fiber.StatusOK, profile, postLoginRedirectPath(c, profile))
}

func (handler *Handler) Signup(c *fiber.Ctx) error {
	ctx := c.UserContext()
	key := clientKey(c)
	if handler.authLimiter.Blocked(ctx, key) {
		return handler.respondAuthLimited(c)
	}

	input := services.SignupInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.authService.SignUp(ctx, input)
	if validationErr, ok := services.AsValidationError(err); ok {
		return validationError(c, "Please check your inputs and try again.", validationErr)
	}
	if errors.Is(err, services.ErrEmailTaken) {
		handler.authLimiter.Record(ctx, key)
		return apiError(c, fiber.StatusConflict, "An account with this email already exists")
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	if err := handler.setSessionCookie(c, profile); err != nil {
		return handler.respondServiceError(c, err)
	}
	return respondSignedIn(c, fiber.StatusCreated, profile, services.RoleHome(profile.Role))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearSessionCookie(c)
	return redirectOrJSON(c, services.LoginPath)
}

// AuthCallback redeems a one-time sign-in code. Admins always land on the
// dashboard; everyone else goes to the sanitized next path.
func (handler *Handler) AuthCallback(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return c.Redirect(authCallbackErrorPath, fiber.StatusSeeOther)
	}

	profile, err := handler.authService.ExchangeCallbackCode(c.UserContext(), code)
	if err != nil {
		return c.Redirect(authCallbackErrorPath, fiber.StatusSeeOther)
	}
	if err := handler.setSessionCookie(c, profile); err != nil {
		return c.Redirect(authCallbackErrorPath, fiber.StatusSeeOther)
	}

	target := services.SanitizeRedirectPath(c.Query("next"), services.PortalHomePath)
	if profile.Role == models.RoleAdmin {
		target = services.AdminHomePath
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	viewer, ok := currentViewer(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := services.PasswordChangeInput{}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.authService.ChangePassword(c.UserContext(), viewer, input)
	if errors.Is(err, services.ErrCurrentPasswordInvalid) {
		return validationError(c, "Please check your inputs and try again.", &services.ValidationError{
			FieldErrors: map[string]string{"current_password": "Current password is incorrect"},
		})
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) respondAuthLimited(c *fiber.Ctx) error {
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(handler.authLimiter.Window().Seconds())))
	return apiError(c, fiber.StatusTooManyRequests, rateLimitedMessage)
}

// postLoginRedirectPath honours a local redirect target for workers only.
func postLoginRedirectPath(c *fiber.Ctx, profile models.Profile) string {
	if profile.Role == models.RoleAdmin {
		return services.AdminHomePath
	}
	requested := c.Query("redirect")
	if requested == "" {
		requested = c.FormValue("redirect")
	}
	target := services.SanitizeRedirectPath(requested, services.PortalHomePath)
	if services.ClassifyRoute(target) != services.RoutePortal {
		return services.PortalHomePath
	}
	return target
}

func respondSignedIn(c *fiber.Ctx, status int, profile models.Profile, target string) error {
	if isHTMX(c) {
		c.Set("HX-Redirect", target)
		return c.SendStatus(fiber.StatusOK)
	}
	if acceptsJSON(c) {
		return c.Status(status).JSON(fiber.Map{
			"ok":                   true,
			"redirect":             target,
			"role":                 profile.Role,
			"must_change_password": profile.MustChangePassword,
		})
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}
