package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentForbidden = errors.New("assignment belongs to another worker")
	ErrInvalidDate         = errors.New("invalid date")
)

type AssignmentRepository interface {
	CreateBatch(ctx context.Context, assignments []models.Assignment) error
	FindByID(ctx context.Context, assignmentID string) (models.Assignment, bool, error)
	ListAll(ctx context.Context) ([]models.Assignment, error)
	ListBetween(ctx context.Context, from string, to string) ([]models.Assignment, error)
	ListForWorkerBetween(ctx context.Context, workerID string, from string, to string) ([]models.Assignment, error)
	ListForWorkerOnDate(ctx context.Context, workerID string, date string) ([]models.Assignment, error)
	UpdateFields(ctx context.Context, assignmentID string, updates map[string]any) (bool, error)
	Delete(ctx context.Context, assignmentID string) (bool, error)
}

type AssignmentProjectReader interface {
	FindByID(ctx context.Context, projectID string) (models.Project, bool, error)
}

type AssignmentProfileReader interface {
	FindByID(ctx context.Context, profileID string) (models.Profile, bool, error)
}

type WeekSchedule struct {
	WeekStart string        `json:"week_start"`
	PrevWeek  string        `json:"prev_week"`
	NextWeek  string        `json:"next_week"`
	Days      []ScheduleDay `json:"days"`
}

type MonthCalendar struct {
	Month     string        `json:"month"`
	PrevMonth string        `json:"prev_month"`
	NextMonth string        `json:"next_month"`
	Days      []ScheduleDay `json:"days"`
}

type AssignmentService struct {
	storeBound
	assignments AssignmentRepository
	projects    AssignmentProjectReader
	profiles    AssignmentProfileReader
	location    *time.Location
}

func NewAssignmentService(assignments AssignmentRepository, projects AssignmentProjectReader, profiles AssignmentProfileReader, location *time.Location, timeout time.Duration) *AssignmentService {
	if location == nil {
		location = time.UTC
	}
	return &AssignmentService{
		storeBound:  newStoreBound(timeout),
		assignments: assignments,
		projects:    projects,
		profiles:    profiles,
		location:    location,
	}
}

// WithClock swaps the time source; used by tests.
func (service *AssignmentService) WithClock(now func() time.Time) *AssignmentService {
	service.now = now
	return service
}

func (service *AssignmentService) Today() time.Time {
	return dateOnly(service.now().In(service.location))
}

// CreateAssignments fans one scheduling request out to one row per worker,
// all inserted in a single transaction.
func (service *AssignmentService) CreateAssignments(ctx context.Context, input AssignmentCreateInput) ([]models.Assignment, error) {
	assignments, err := ValidateAssignmentCreate(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()

	errs := fieldErrors{}
	if _, found, err := service.projects.FindByID(ctx, assignments[0].ProjectID); err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	} else if !found {
		errs.add("project_id", "Please select a project")
	}
	for _, assignment := range assignments {
		if _, found, err := service.profiles.FindByID(ctx, assignment.WorkerID); err != nil {
			return nil, fmt.Errorf("load worker: %w", err)
		} else if !found {
			errs.add("worker_ids", "Please select a worker")
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := service.assignments.CreateBatch(ctx, assignments); err != nil {
		return nil, fmt.Errorf("create assignments: %w", err)
	}
	return assignments, nil
}

// UpdateAssignment is the admin edit. It is the only path that can set
// no_show.
func (service *AssignmentService) UpdateAssignment(ctx context.Context, assignmentID string, input AssignmentUpdateInput) (models.Assignment, error) {
	columns, status, err := ValidateAssignmentUpdate(input)
	if err != nil {
		return models.Assignment{}, err
	}

	current, err := service.FindAssignment(ctx, assignmentID)
	if err != nil {
		return models.Assignment{}, err
	}
	if status != nil {
		if err := models.AssignmentStatusChangeAllowed(current.Status, *status); err != nil {
			return models.Assignment{}, ErrInvalidStatus
		}
		columns["status"] = *status
	}
	if len(columns) == 0 {
		return current, nil
	}

	if err := service.update(ctx, assignmentID, columns); err != nil {
		return models.Assignment{}, err
	}
	return service.FindAssignment(ctx, assignmentID)
}

func (service *AssignmentService) DeleteAssignment(ctx context.Context, assignmentID string) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	deleted, err := service.assignments.Delete(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if !deleted {
		return ErrAssignmentNotFound
	}
	return nil
}

func (service *AssignmentService) FindAssignment(ctx context.Context, assignmentID string) (models.Assignment, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	assignment, found, err := service.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	if !found {
		return models.Assignment{}, ErrAssignmentNotFound
	}
	return assignment, nil
}

// ApplyWorkerAction runs check-in, check-out or the complete toggle. Workers
// may only act on their own rows.
func (service *AssignmentService) ApplyWorkerAction(ctx context.Context, viewer Viewer, assignmentID string, action models.AssignmentAction) (models.Assignment, error) {
	assignment, err := service.FindAssignment(ctx, assignmentID)
	if err != nil {
		return models.Assignment{}, err
	}
	if !viewer.IsAdmin() && assignment.WorkerID != viewer.ProfileID {
		return models.Assignment{}, ErrAssignmentForbidden
	}

	transition, err := models.NextAssignmentState(assignment.Status, action, service.now())
	if err != nil {
		return models.Assignment{}, err
	}
	if err := service.update(ctx, assignmentID, transition.Columns()); err != nil {
		return models.Assignment{}, err
	}
	transition.ApplyTo(&assignment)
	return assignment, nil
}

func (service *AssignmentService) ListAllAssignments(ctx context.Context) ([]models.Assignment, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.assignments.ListAll(ctx)
}

// TodayJobs lists the viewer's assignments for today, earliest start first.
func (service *AssignmentService) TodayJobs(ctx context.Context, viewer Viewer) ([]models.Assignment, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.assignments.ListForWorkerOnDate(ctx, viewer.ProfileID, service.Today().Format(models.DateLayout))
}

// WeekSchedule groups the viewer's assignments into the Monday-start week
// containing anchor (YYYY-MM-DD, default today).
func (service *AssignmentService) WeekSchedule(ctx context.Context, viewer Viewer, anchor string) (WeekSchedule, error) {
	today := service.Today()
	day := today
	if anchor != "" {
		parsed, err := time.ParseInLocation(models.DateLayout, anchor, service.location)
		if err != nil {
			return WeekSchedule{}, ErrInvalidDate
		}
		day = parsed
	}

	start := WeekStart(day)
	end := start.AddDate(0, 0, 7)

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	assignments, err := service.assignments.ListForWorkerBetween(ctx, viewer.ProfileID,
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return WeekSchedule{}, fmt.Errorf("load week: %w", err)
	}

	return WeekSchedule{
		WeekStart: start.Format(models.DateLayout),
		PrevWeek:  start.AddDate(0, 0, -7).Format(models.DateLayout),
		NextWeek:  end.Format(models.DateLayout),
		Days:      GroupAssignmentsByDate(start, 7, today.Format(models.DateLayout), assignments),
	}, nil
}

// MonthCalendar groups every assignment in the month (YYYY-MM, default the
// current month) by scheduled date.
func (service *AssignmentService) MonthCalendar(ctx context.Context, month string) (MonthCalendar, error) {
	today := service.Today()
	start := MonthStart(today)
	if month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, service.location)
		if err != nil {
			return MonthCalendar{}, ErrInvalidDate
		}
		start = parsed
	}
	end := start.AddDate(0, 1, 0)

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	assignments, err := service.assignments.ListBetween(ctx, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return MonthCalendar{}, fmt.Errorf("load month: %w", err)
	}

	days := end.AddDate(0, 0, -1).Day()
	return MonthCalendar{
		Month:     start.Format("2006-01"),
		PrevMonth: start.AddDate(0, -1, 0).Format("2006-01"),
		NextMonth: end.Format("2006-01"),
		Days:      GroupAssignmentsByDate(start, days, today.Format(models.DateLayout), assignments),
	}, nil
}

func (service *AssignmentService) update(ctx context.Context, assignmentID string, columns map[string]any) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	updated, err := service.assignments.UpdateFields(ctx, assignmentID, columns)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	if !updated {
		return ErrAssignmentNotFound
	}
	return nil
}
