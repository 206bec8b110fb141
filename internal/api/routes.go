package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Use(handler.Gate)
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
	registerAdminRoutes(app, handler)
	registerPortalRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(handler.metrics.Handler()))
	app.Get("/favicon.ico", sendNoContent)

	app.Get("/", handler.Landing)
	app.Get("/login", handler.ShowLoginPage)
	app.Get("/signup", handler.ShowSignupPage)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")
	api.Post("/leads", handler.SubmitLead)

	auth := api.Group("/auth")
	auth.Get("/callback", handler.AuthCallback)
	auth.Post("/login", handler.Login)
	auth.Post("/signup", handler.Signup)
	auth.Post("/logout", handler.Logout)

	account := api.Group("/account", handler.AuthRequired)
	account.Post("/password", handler.ChangePassword)
}

// The gate redirects callers in the wrong role; the group middleware is the
// backstop for anything the gate passes.
func registerAdminRoutes(app *fiber.App, handler *Handler) {
	admin := app.Group("/admin", handler.AdminOnly)
	admin.Get("", handler.AdminDashboard)
	admin.Get("/calendar", handler.AdminCalendar)

	assignments := admin.Group("/assignments")
	assignments.Post("", handler.CreateAssignments)
	assignments.Patch("/:id", handler.UpdateAssignment)
	assignments.Delete("/:id", handler.DeleteAssignment)

	projects := admin.Group("/projects")
	projects.Get("", handler.ListProjects)
	projects.Post("", handler.CreateProject)
	projects.Put("/:id", handler.UpdateProject)
	projects.Patch("/:id/status", handler.ChangeProjectStatus)
	projects.Delete("/:id", handler.DeleteProject)

	workers := admin.Group("/workers")
	workers.Get("", handler.ListWorkers)
	workers.Put("/:id", handler.UpdateWorker)
	workers.Delete("/:id", handler.DeleteWorker)

	leads := admin.Group("/leads")
	leads.Get("", handler.ListLeads)
	leads.Get("/export", handler.ExportLeads)
	leads.Post("", handler.CreateLead)
	leads.Put("/:id", handler.UpdateLead)
	leads.Patch("/:id/status", handler.ChangeLeadStatus)
	leads.Delete("/:id", handler.DeleteLead)

	admin.Get("/settings", handler.AdminSettings)
	admin.Put("/settings", handler.UpdateAdminSettings)
}

func registerPortalRoutes(app *fiber.App, handler *Handler) {
	portal := app.Group("/portal", handler.WorkerOnly)
	portal.Get("", handler.PortalToday)
	portal.Get("/schedule", handler.PortalSchedule)
	portal.Get("/profile", handler.PortalProfile)
	portal.Put("/profile", handler.UpdatePortalProfile)

	assignments := portal.Group("/assignments")
	assignments.Post("/:id/check-in", handler.CheckIn)
	assignments.Post("/:id/check-out", handler.CheckOut)
	assignments.Post("/:id/toggle-complete", handler.ToggleComplete)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
