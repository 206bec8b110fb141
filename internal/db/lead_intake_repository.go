package db

import (
	"context"

	"github.com/terraincognita07/crewdesk/internal/models"
	"gorm.io/gorm"
)

// LeadIntakeRepository is the only write path available to unauthenticated
// visitors. It may run on its own database credential and can do nothing
// but insert a fresh website lead.
type LeadIntakeRepository struct {
	database *gorm.DB
}

func NewLeadIntakeRepository(database *gorm.DB) *LeadIntakeRepository {
	return &LeadIntakeRepository{database: database}
}

// InsertPublicLead forces the website source and the initial pipeline status
// regardless of what the caller set.
func (repo *LeadIntakeRepository) InsertPublicLead(ctx context.Context, lead *models.Lead) error {
	lead.Source = models.LeadSourceWebsite
	lead.Status = models.LeadStatusNew
	lead.ConvertedProjectID = nil
	return repo.database.WithContext(ctx).Create(lead).Error
}
