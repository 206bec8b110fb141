package services

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

type DashboardLeadCounter interface {
	CountByStatus(ctx context.Context, status models.LeadStatus) (int64, error)
}

type DashboardAssignmentCounter interface {
	CountOnDate(ctx context.Context, date string) (int64, error)
}

type DashboardCounts struct {
	ActiveProjects   int64 `json:"active_projects"`
	NewLeads         int64 `json:"new_leads"`
	TodayAssignments int64 `json:"today_assignments"`
}

type AdminDashboard struct {
	Today          string              `json:"today"`
	Assignments    []models.Assignment `json:"assignments"`
	ActiveProjects []models.Project    `json:"active_projects"`
	Workers        []models.Profile    `json:"workers"`
	Counts         DashboardCounts     `json:"counts"`
}

type DashboardService struct {
	storeBound
	assignments      *AssignmentService
	projects         *ProjectService
	profiles         *ProfileService
	leadCounter      DashboardLeadCounter
	scheduledCounter DashboardAssignmentCounter
}

func NewDashboardService(
	assignments *AssignmentService,
	projects *ProjectService,
	profiles *ProfileService,
	leadCounter DashboardLeadCounter,
	scheduledCounter DashboardAssignmentCounter,
	timeout time.Duration,
) *DashboardService {
	return &DashboardService{
		storeBound:       newStoreBound(timeout),
		assignments:      assignments,
		projects:         projects,
		profiles:         profiles,
		leadCounter:      leadCounter,
		scheduledCounter: scheduledCounter,
	}
}

// Load gathers the scheduling board: every assignment with its project and
// worker, the projects that can still be scheduled and the worker roster.
func (service *DashboardService) Load(ctx context.Context) (AdminDashboard, error) {
	today := service.assignments.Today().Format(models.DateLayout)

	assignments, err := service.assignments.ListAllAssignments(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("load assignments: %w", err)
	}
	activeProjects, err := service.projects.ListActiveProjects(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("load active projects: %w", err)
	}
	workers, err := service.profiles.ListWorkers(ctx)
	if err != nil {
		return AdminDashboard{}, fmt.Errorf("load workers: %w", err)
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()

	counts := DashboardCounts{ActiveProjects: int64(len(activeProjects))}
	if counts.NewLeads, err = service.leadCounter.CountByStatus(ctx, models.LeadStatusNew); err != nil {
		return AdminDashboard{}, fmt.Errorf("count new leads: %w", err)
	}
	if counts.TodayAssignments, err = service.scheduledCounter.CountOnDate(ctx, today); err != nil {
		return AdminDashboard{}, fmt.Errorf("count today's assignments: %w", err)
	}

	return AdminDashboard{
		Today:          today,
		Assignments:    assignments,
		ActiveProjects: activeProjects,
		Workers:        workers,
		Counts:         counts,
	}, nil
}
