package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

type AssignmentStatus string

const (
	AssignmentStatusScheduled  AssignmentStatus = "scheduled"
	AssignmentStatusInProgress AssignmentStatus = "in_progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusNoShow     AssignmentStatus = "no_show"
)

func ParseAssignmentStatus(raw string) (AssignmentStatus, bool) {
	status := AssignmentStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

func (status AssignmentStatus) Valid() bool {
	switch status {
	case AssignmentStatusScheduled, AssignmentStatusInProgress, AssignmentStatusCompleted, AssignmentStatusNoShow:
		return true
	default:
		return false
	}
}

// Assignment schedules one worker on one project for one calendar day.
// ScheduledDate is stored as YYYY-MM-DD so range filters compare lexically.
type Assignment struct {
	ID            string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProjectID     string           `gorm:"type:varchar(36);not null;index" json:"project_id"`
	WorkerID      string           `gorm:"type:varchar(36);not null;index" json:"worker_id"`
	ScheduledDate string           `gorm:"type:varchar(10);not null;index" json:"scheduled_date"`
	StartTime     string           `gorm:"type:varchar(5)" json:"start_time"`
	EndTime       string           `gorm:"type:varchar(5)" json:"end_time"`
	Status        AssignmentStatus `gorm:"type:varchar(16);not null;default:scheduled" json:"status"`
	CheckInTime   *time.Time       `json:"check_in_time"`
	CheckOutTime  *time.Time       `json:"check_out_time"`
	Notes         string           `json:"notes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Worker  *Profile `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
}

func (assignment *Assignment) BeforeCreate(*gorm.DB) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.Status == "" {
		assignment.Status = AssignmentStatusScheduled
	}
	return nil
}

// WorkerJobStats summarises a worker's assignment history for the portal
// profile page.
type WorkerJobStats struct {
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	ThisMonth     int64 `json:"this_month"`
}
