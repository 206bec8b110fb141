package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/crewdesk/internal/models"
	"gorm.io/gorm"
)

type LeadRepository struct {
	database *gorm.DB
}

func NewLeadRepository(database *gorm.DB) *LeadRepository {
	return &LeadRepository{database: database}
}

func (repo *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return repo.database.WithContext(ctx).Create(lead).Error
}

func (repo *LeadRepository) FindByID(ctx context.Context, leadID string) (models.Lead, bool, error) {
	var lead models.Lead
	err := repo.database.WithContext(ctx).Where("id = ?", leadID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Lead{}, false, nil
	}
	if err != nil {
		return models.Lead{}, false, err
	}
	return lead, true, nil
}

// List returns leads newest first; an empty status means every status.
func (repo *LeadRepository) List(ctx context.Context, status models.LeadStatus) ([]models.Lead, error) {
	query := repo.database.WithContext(ctx).Model(&models.Lead{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	leads := make([]models.Lead, 0)
	if err := query.Order("created_at DESC, id ASC").Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

func (repo *LeadRepository) CountByStatus(ctx context.Context, status models.LeadStatus) (int64, error) {
	var count int64
	err := repo.database.WithContext(ctx).Model(&models.Lead{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (repo *LeadRepository) UpdateFields(ctx context.Context, leadID string, updates map[string]any) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (repo *LeadRepository) Delete(ctx context.Context, leadID string) (bool, error) {
	result := repo.database.WithContext(ctx).Where("id = ?", leadID).Delete(&models.Lead{})
	return result.RowsAffected > 0, result.Error
}
