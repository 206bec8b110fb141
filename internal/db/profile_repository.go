package db

import (
	"context"
	"errors"
	"strings"

	"github.com/terraincognita07/crewdesk/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return repo.database.WithContext(ctx).Create(profile).Error
}

func (repo *ProfileRepository) FindByID(ctx context.Context, profileID string) (models.Profile, bool, error) {
	return repo.findOne(ctx, "id = ?", profileID)
}

func (repo *ProfileRepository) FindByEmail(ctx context.Context, email string) (models.Profile, bool, error) {
	return repo.findOne(ctx, "email = ?", normalizeEmail(email))
}

func (repo *ProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&models.Profile{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *ProfileRepository) ListAll(ctx context.Context) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0)
	if err := repo.database.WithContext(ctx).Order("full_name ASC, email ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0)
	if err := repo.database.WithContext(ctx).
		Where("role = ?", role).
		Order("full_name ASC, email ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) UpdateFields(ctx context.Context, profileID string, updates map[string]any) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (repo *ProfileRepository) UpdatePassword(ctx context.Context, profileID string, passwordHash string, mustChangePassword bool) error {
	return repo.database.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(map[string]any{
			"password_hash":        passwordHash,
			"must_change_password": mustChangePassword,
		}).Error
}

// Delete removes the profile together with every assignment it is scheduled
// on, and detaches the projects it created.
func (repo *ProfileRepository) Delete(ctx context.Context, profileID string) (bool, error) {
	deleted := false
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("worker_id = ?", profileID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).
			Where("created_by = ?", profileID).
			Update("created_by", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", profileID).Delete(&models.Profile{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (repo *ProfileRepository) findOne(ctx context.Context, query string, args ...any) (models.Profile, bool, error) {
	var profile models.Profile
	err := repo.database.WithContext(ctx).Where(query, args...).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
