package api

import "github.com/gofiber/fiber/v2"

// AppConfig is the router configuration the gate relies on. Routes match
// exactly as registered, so /ADMIN or /admin/ never reach an admin handler
// under a category the gate did not check.
func AppConfig() fiber.Config {
	return fiber.Config{
		AppName:               "Crewdesk",
		DisableStartupMessage: true,
		CaseSensitive:         true,
		StrictRouting:         true,
	}
}
