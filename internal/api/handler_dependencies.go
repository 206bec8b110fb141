package api

import (
	"github.com/terraincognita07/crewdesk/internal/db"
	"github.com/terraincognita07/crewdesk/internal/services"
)

func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}
	repositories := handler.repositories

	if handler.authService == nil {
		handler.authService = services.NewAuthService(repositories.Profiles, handler.tokens, handler.storeTimeout)
	}
	if handler.leadService == nil {
		handler.leadService = services.NewLeadService(handler.intake, repositories.Leads, handler.notifier, handler.logger, handler.storeTimeout)
	}
	if handler.projectService == nil {
		handler.projectService = services.NewProjectService(repositories.Projects, handler.storeTimeout)
	}
	if handler.assignmentService == nil {
		handler.assignmentService = services.NewAssignmentService(repositories.Assignments, repositories.Projects, repositories.Profiles, handler.location, handler.storeTimeout)
	}
	if handler.profileService == nil {
		handler.profileService = services.NewProfileService(repositories.Profiles, repositories.Assignments, handler.location, handler.storeTimeout)
	}
	if handler.dashboardService == nil {
		handler.dashboardService = services.NewDashboardService(
			handler.assignmentService,
			handler.projectService,
			handler.profileService,
			repositories.Leads,
			repositories.Assignments,
			handler.storeTimeout,
		)
	}
	if handler.exportService == nil {
		handler.exportService = services.NewExportService(repositories.Leads, handler.location, handler.storeTimeout)
	}
}
