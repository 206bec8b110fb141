package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/crewdesk/internal/models"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	database *gorm.DB
}

func NewAssignmentRepository(database *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{database: database}
}

// CreateBatch inserts a fan-out of assignments atomically.
func (repo *AssignmentRepository) CreateBatch(ctx context.Context, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for index := range assignments {
			if err := tx.Omit("Project", "Worker").Create(&assignments[index]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *AssignmentRepository) FindByID(ctx context.Context, assignmentID string) (models.Assignment, bool, error) {
	var assignment models.Assignment
	err := repo.joined(ctx).Where("id = ?", assignmentID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Assignment{}, false, nil
	}
	if err != nil {
		return models.Assignment{}, false, err
	}
	return assignment, true, nil
}

func (repo *AssignmentRepository) ListAll(ctx context.Context) ([]models.Assignment, error) {
	return repo.list(repo.joined(ctx))
}

// ListBetween returns assignments with from <= scheduled_date < to.
func (repo *AssignmentRepository) ListBetween(ctx context.Context, from string, to string) ([]models.Assignment, error) {
	return repo.list(repo.joined(ctx).Where("scheduled_date >= ? AND scheduled_date < ?", from, to))
}

func (repo *AssignmentRepository) ListForWorkerBetween(ctx context.Context, workerID string, from string, to string) ([]models.Assignment, error) {
	return repo.list(repo.joined(ctx).
		Where("worker_id = ? AND scheduled_date >= ? AND scheduled_date < ?", workerID, from, to))
}

func (repo *AssignmentRepository) ListForWorkerOnDate(ctx context.Context, workerID string, date string) ([]models.Assignment, error) {
	return repo.list(repo.joined(ctx).Where("worker_id = ? AND scheduled_date = ?", workerID, date))
}

func (repo *AssignmentRepository) CountOnDate(ctx context.Context, date string) (int64, error) {
	var count int64
	err := repo.database.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("scheduled_date = ?", date).
		Count(&count).Error
	return count, err
}

// WorkerStats counts all, completed and since-monthStart assignments.
func (repo *AssignmentRepository) WorkerStats(ctx context.Context, workerID string, monthStart string) (models.WorkerJobStats, error) {
	stats := models.WorkerJobStats{}
	base := func() *gorm.DB {
		return repo.database.WithContext(ctx).Model(&models.Assignment{}).Where("worker_id = ?", workerID)
	}
	if err := base().Count(&stats.TotalJobs).Error; err != nil {
		return models.WorkerJobStats{}, err
	}
	if err := base().Where("status = ?", models.AssignmentStatusCompleted).Count(&stats.CompletedJobs).Error; err != nil {
		return models.WorkerJobStats{}, err
	}
	if err := base().Where("scheduled_date >= ?", monthStart).Count(&stats.ThisMonth).Error; err != nil {
		return models.WorkerJobStats{}, err
	}
	return stats, nil
}

func (repo *AssignmentRepository) UpdateFields(ctx context.Context, assignmentID string, updates map[string]any) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", assignmentID).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (repo *AssignmentRepository) Delete(ctx context.Context, assignmentID string) (bool, error) {
	result := repo.database.WithContext(ctx).Where("id = ?", assignmentID).Delete(&models.Assignment{})
	return result.RowsAffected > 0, result.Error
}

func (repo *AssignmentRepository) joined(ctx context.Context) *gorm.DB {
	return repo.database.WithContext(ctx).Preload("Project").Preload("Worker")
}

func (repo *AssignmentRepository) list(query *gorm.DB) ([]models.Assignment, error) {
	assignments := make([]models.Assignment, 0)
	if err := query.Order("scheduled_date ASC, start_time ASC, id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
