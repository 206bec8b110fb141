package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/crewdesk/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	database *gorm.DB
}

func NewProjectRepository(database *gorm.DB) *ProjectRepository {
	return &ProjectRepository{database: database}
}

func (repo *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return repo.database.WithContext(ctx).Create(project).Error
}

func (repo *ProjectRepository) FindByID(ctx context.Context, projectID string) (models.Project, bool, error) {
	var project models.Project
	err := repo.database.WithContext(ctx).Where("id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, false, nil
	}
	if err != nil {
		return models.Project{}, false, err
	}
	return project, true, nil
}

func (repo *ProjectRepository) ListNewestFirst(ctx context.Context) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := repo.database.WithContext(ctx).Order("created_at DESC, id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) ListByStatuses(ctx context.Context, statuses []models.ProjectStatus) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := repo.database.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("name ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) CountByStatuses(ctx context.Context, statuses []models.ProjectStatus) (int64, error) {
	var count int64
	err := repo.database.WithContext(ctx).
		Model(&models.Project{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (repo *ProjectRepository) UpdateFields(ctx context.Context, projectID string, updates map[string]any) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// Delete is a hard delete. Assignments on the project go with it and leads
// converted into it lose the reference.
func (repo *ProjectRepository) Delete(ctx context.Context, projectID string) (bool, error) {
	deleted := false
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Lead{}).
			Where("converted_project_id = ?", projectID).
			Update("converted_project_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", projectID).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}
