package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Phase string

const (
	PhaseRough    Phase = "rough"
	PhaseFinal    Phase = "final"
	PhasePunch    Phase = "punch"
	PhaseTurnover Phase = "turnover"
)

var phaseLabels = map[Phase]string{
	PhaseRough:    "Rough Clean",
	PhaseFinal:    "Final Clean",
	PhasePunch:    "Punch List",
	PhaseTurnover: "Turnover",
}

func AllPhases() []Phase {
	return []Phase{PhaseRough, PhaseFinal, PhasePunch, PhaseTurnover}
}

func ParsePhase(raw string) (Phase, bool) {
	phase := Phase(strings.ToLower(strings.TrimSpace(raw)))
	return phase, phase.Valid()
}

func (phase Phase) Valid() bool {
	_, ok := phaseLabels[phase]
	return ok
}

func (phase Phase) Label() string {
	if label, ok := phaseLabels[phase]; ok {
		return label
	}
	return string(phase)
}

type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusScheduled  ProjectStatus = "scheduled"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

func ParseProjectStatus(raw string) (ProjectStatus, bool) {
	status := ProjectStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

func (status ProjectStatus) Valid() bool {
	switch status {
	case ProjectStatusPending, ProjectStatusScheduled, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	default:
		return false
	}
}

// Active statuses are the ones the scheduling calendar offers for new assignments.
func (status ProjectStatus) Active() bool {
	return status == ProjectStatusPending || status == ProjectStatusScheduled || status == ProjectStatusInProgress
}

func ActiveProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectStatusPending, ProjectStatusScheduled, ProjectStatusInProgress}
}

type Project struct {
	ID             string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name           string        `gorm:"not null" json:"name"`
	Address        string        `gorm:"not null" json:"address"`
	City           string        `json:"city"`
	State          string        `gorm:"type:varchar(2)" json:"state"`
	ZipCode        string        `json:"zip_code"`
	SqFootage      *int          `json:"sq_footage"`
	Phase          Phase         `gorm:"type:varchar(16)" json:"phase"`
	Status         ProjectStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	GCName         string        `gorm:"column:gc_name" json:"gc_name"`
	GCEmail        string        `gorm:"column:gc_email" json:"gc_email"`
	GCPhone        string        `gorm:"column:gc_phone" json:"gc_phone"`
	GateCode       string        `json:"gate_code"`
	SiteNotes      string        `json:"site_notes"`
	EstimatedHours *float64      `json:"estimated_hours"`
	ActualHours    *float64      `json:"actual_hours"`
	Price          *float64      `json:"price"`
	CreatedBy      *string       `gorm:"type:varchar(36);index" json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (project *Project) BeforeCreate(*gorm.DB) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Status == "" {
		project.Status = ProjectStatusPending
	}
	return nil
}
