package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

const (
	LeadSourceWebsite = "website"
	LeadSourceManual  = "manual"
)

func ParseLeadStatus(raw string) (LeadStatus, bool) {
	status := LeadStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

func (status LeadStatus) Valid() bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQuoted, LeadStatusWon, LeadStatusLost:
		return true
	default:
		return false
	}
}

type Lead struct {
	ID                 string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectName        string     `gorm:"not null" json:"project_name"`
	SqFootage          *int       `json:"sq_footage"`
	Phase              Phase      `gorm:"type:varchar(16)" json:"phase"`
	EstimatedStartDate string     `gorm:"type:varchar(10)" json:"estimated_start_date"`
	GCEmail            string     `gorm:"column:gc_email;not null" json:"gc_email"`
	GCName             string     `gorm:"column:gc_name" json:"gc_name"`
	GCPhone            string     `gorm:"column:gc_phone" json:"gc_phone"`
	CompanyName        string     `json:"company_name"`
	Address            string     `json:"address"`
	Message            string     `json:"message"`
	Source             string     `gorm:"not null;default:manual" json:"source"`
	Status             LeadStatus `gorm:"type:varchar(16);not null;default:new;index" json:"status"`
	ConvertedProjectID *string    `gorm:"type:varchar(36)" json:"converted_project_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (lead *Lead) BeforeCreate(*gorm.DB) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = LeadStatusNew
	}
	if lead.Source == "" {
		lead.Source = LeadSourceManual
	}
	return nil
}
