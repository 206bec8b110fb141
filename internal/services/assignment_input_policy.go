package services

import (
	"strings"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const assignmentNotesMax = 500

// AssignmentCreateInput fans out into one assignment per worker id.
type AssignmentCreateInput struct {
	ProjectID     string   `json:"project_id" form:"project_id"`
	WorkerIDs     []string `json:"worker_ids" form:"worker_ids"`
	ScheduledDate string   `json:"scheduled_date" form:"scheduled_date"`
	StartTime     string   `json:"start_time" form:"start_time"`
	EndTime       string   `json:"end_time" form:"end_time"`
	Notes         string   `json:"notes" form:"notes"`
}

// AssignmentUpdateInput is a partial admin edit; nil fields are left alone.
type AssignmentUpdateInput struct {
	ProjectID     *string `json:"project_id" form:"project_id"`
	WorkerID      *string `json:"worker_id" form:"worker_id"`
	ScheduledDate *string `json:"scheduled_date" form:"scheduled_date"`
	StartTime     *string `json:"start_time" form:"start_time"`
	EndTime       *string `json:"end_time" form:"end_time"`
	Status        *string `json:"status" form:"status"`
	Notes         *string `json:"notes" form:"notes"`
}

// ValidateAssignmentCreate returns one row per distinct worker, all sharing
// project, date, times and notes.
func ValidateAssignmentCreate(input AssignmentCreateInput) ([]models.Assignment, error) {
	errs := fieldErrors{}

	projectID := strings.TrimSpace(input.ProjectID)
	if !isValidUUID(projectID) {
		errs.add("project_id", "Please select a project")
	}

	workerIDs := make([]string, 0, len(input.WorkerIDs))
	seen := make(map[string]struct{}, len(input.WorkerIDs))
	for _, raw := range input.WorkerIDs {
		workerID := strings.TrimSpace(raw)
		if workerID == "" {
			continue
		}
		if !isValidUUID(workerID) {
			errs.add("worker_ids", "Please select a worker")
			continue
		}
		if _, duplicate := seen[workerID]; duplicate {
			continue
		}
		seen[workerID] = struct{}{}
		workerIDs = append(workerIDs, workerID)
	}
	if len(workerIDs) == 0 {
		errs.add("worker_ids", "Please select at least one worker")
	}

	scheduledDate := strings.TrimSpace(input.ScheduledDate)
	if scheduledDate == "" {
		errs.add("scheduled_date", "Please select a date")
	} else if _, ok := parseCalendarDate(scheduledDate); !ok {
		errs.add("scheduled_date", "Please select a date")
	}

	startTime := checkOptionalClock(errs, "start_time", input.StartTime)
	endTime := checkOptionalClock(errs, "end_time", input.EndTime)
	notes := strings.TrimSpace(input.Notes)
	checkMaxLength(errs, "notes", notes, assignmentNotesMax)

	if err := errs.err(); err != nil {
		return nil, err
	}

	assignments := make([]models.Assignment, 0, len(workerIDs))
	for _, workerID := range workerIDs {
		assignments = append(assignments, models.Assignment{
			ProjectID:     projectID,
			WorkerID:      workerID,
			ScheduledDate: scheduledDate,
			StartTime:     startTime,
			EndTime:       endTime,
			Status:        models.AssignmentStatusScheduled,
			Notes:         notes,
		})
	}
	return assignments, nil
}

// ValidateAssignmentUpdate returns the column set to write. The status is
// returned separately so the caller can run it through the transition policy.
func ValidateAssignmentUpdate(input AssignmentUpdateInput) (map[string]any, *models.AssignmentStatus, error) {
	errs := fieldErrors{}
	columns := map[string]any{}

	if input.ProjectID != nil {
		projectID := strings.TrimSpace(*input.ProjectID)
		if !isValidUUID(projectID) {
			errs.add("project_id", "Please select a project")
		}
		columns["project_id"] = projectID
	}
	if input.WorkerID != nil {
		workerID := strings.TrimSpace(*input.WorkerID)
		if !isValidUUID(workerID) {
			errs.add("worker_id", "Please select a worker")
		}
		columns["worker_id"] = workerID
	}
	if input.ScheduledDate != nil {
		scheduledDate := strings.TrimSpace(*input.ScheduledDate)
		if _, ok := parseCalendarDate(scheduledDate); !ok {
			errs.add("scheduled_date", "Please select a date")
		}
		columns["scheduled_date"] = scheduledDate
	}
	if input.StartTime != nil {
		columns["start_time"] = checkOptionalClock(errs, "start_time", *input.StartTime)
	}
	if input.EndTime != nil {
		columns["end_time"] = checkOptionalClock(errs, "end_time", *input.EndTime)
	}
	if input.Notes != nil {
		notes := strings.TrimSpace(*input.Notes)
		checkMaxLength(errs, "notes", notes, assignmentNotesMax)
		columns["notes"] = notes
	}

	var status *models.AssignmentStatus
	if input.Status != nil {
		parsed, ok := models.ParseAssignmentStatus(*input.Status)
		if !ok {
			errs.add("status", "Unknown assignment status")
		}
		status = &parsed
	}

	if err := errs.err(); err != nil {
		return nil, nil, err
	}
	return columns, status, nil
}

func checkOptionalClock(errs fieldErrors, field string, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if !isValidClock(value) {
		errs.add(field, "Invalid time format")
		return ""
	}
	return value
}
