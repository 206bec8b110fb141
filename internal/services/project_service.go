package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, projectID string) (models.Project, bool, error)
	ListNewestFirst(ctx context.Context) ([]models.Project, error)
	ListByStatuses(ctx context.Context, statuses []models.ProjectStatus) ([]models.Project, error)
	UpdateFields(ctx context.Context, projectID string, updates map[string]any) (bool, error)
	Delete(ctx context.Context, projectID string) (bool, error)
}

type ProjectService struct {
	storeBound
	projects ProjectRepository
}

func NewProjectService(projects ProjectRepository, timeout time.Duration) *ProjectService {
	return &ProjectService{storeBound: newStoreBound(timeout), projects: projects}
}

func (service *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.projects.ListNewestFirst(ctx)
}

// ListActiveProjects returns pending, scheduled and in-progress projects by
// name, the set offered when scheduling.
func (service *ProjectService) ListActiveProjects(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.projects.ListByStatuses(ctx, models.ActiveProjectStatuses())
}

func (service *ProjectService) FindProject(ctx context.Context, projectID string) (models.Project, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	project, found, err := service.projects.FindByID(ctx, projectID)
	if err != nil {
		return models.Project{}, fmt.Errorf("load project: %w", err)
	}
	if !found {
		return models.Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (service *ProjectService) CreateProject(ctx context.Context, viewer Viewer, input ProjectInput) (models.Project, error) {
	project, err := ValidateProjectInput(input)
	if err != nil {
		return models.Project{}, err
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusPending
	}
	if viewer.ProfileID != "" {
		creator := viewer.ProfileID
		project.CreatedBy = &creator
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	if err := service.projects.Create(ctx, &project); err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (service *ProjectService) UpdateProject(ctx context.Context, projectID string, input ProjectInput) (models.Project, error) {
	draft, err := ValidateProjectInput(input)
	if err != nil {
		return models.Project{}, err
	}

	current, err := service.FindProject(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if draft.Status != "" {
		if err := models.ProjectStatusChangeAllowed(current.Status, draft.Status); err != nil {
			return models.Project{}, ErrInvalidStatus
		}
	}

	if err := service.update(ctx, projectID, projectColumns(draft)); err != nil {
		return models.Project{}, err
	}
	return service.FindProject(ctx, projectID)
}

func (service *ProjectService) ChangeProjectStatus(ctx context.Context, projectID string, rawStatus string) (models.Project, error) {
	target, ok := models.ParseProjectStatus(rawStatus)
	if !ok {
		return models.Project{}, ErrInvalidStatus
	}
	current, err := service.FindProject(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	if err := models.ProjectStatusChangeAllowed(current.Status, target); err != nil {
		return models.Project{}, ErrInvalidStatus
	}

	if err := service.update(ctx, projectID, map[string]any{"status": target}); err != nil {
		return models.Project{}, err
	}
	current.Status = target
	return current, nil
}

func (service *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	deleted, err := service.projects.Delete(ctx, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !deleted {
		return ErrProjectNotFound
	}
	return nil
}

func (service *ProjectService) update(ctx context.Context, projectID string, columns map[string]any) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	updated, err := service.projects.UpdateFields(ctx, projectID, columns)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if !updated {
		return ErrProjectNotFound
	}
	return nil
}
