package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/crewdesk/internal/models"
)

func newTestRepositories(t *testing.T) (*Repositories, *LeadIntakeRepository) {
	t.Helper()
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "crewdesk-repos.db"))
	return NewRepositories(database), NewLeadIntakeRepository(database)
}

func seedProfile(t *testing.T, repos *Repositories, email string, role models.Role, name string) models.Profile {
	t.Helper()
	profile := models.Profile{Email: email, PasswordHash: "hash", FullName: name, Role: role}
	require.NoError(t, repos.Profiles.Create(context.Background(), &profile))
	return profile
}

func seedProject(t *testing.T, repos *Repositories, name string, status models.ProjectStatus, createdBy *string) models.Project {
	t.Helper()
	project := models.Project{Name: name, Address: "100 Main Street", City: "Austin", State: "TX", Status: status, CreatedBy: createdBy}
	require.NoError(t, repos.Projects.Create(context.Background(), &project))
	return project
}

func TestProfileRepositoryFindByEmailIsCaseInsensitive(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	created := seedProfile(t, repos, "crew@example.com", models.RoleWorker, "Crew Member")

	found, ok, err := repos.Profiles.FindByEmail(ctx, "  CREW@example.com ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.ID, found.ID)

	exists, err := repos.Profiles.ExistsByEmail(ctx, "Crew@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, ok, err = repos.Profiles.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileRepositoryListByRoleOrdersByName(t *testing.T) {
	repos, _ := newTestRepositories(t)
	seedProfile(t, repos, "zed@example.com", models.RoleWorker, "Zed")
	seedProfile(t, repos, "amy@example.com", models.RoleWorker, "Amy")
	seedProfile(t, repos, "boss@example.com", models.RoleAdmin, "Boss")

	workers, err := repos.Profiles.ListByRole(context.Background(), models.RoleWorker)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "Amy", workers[0].FullName)
	assert.Equal(t, "Zed", workers[1].FullName)
}

func TestDeletingWorkerRemovesTheirAssignments(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	admin := seedProfile(t, repos, "admin@example.com", models.RoleAdmin, "Admin")
	worker := seedProfile(t, repos, "worker@example.com", models.RoleWorker, "Worker")
	other := seedProfile(t, repos, "other@example.com", models.RoleWorker, "Other")
	project := seedProject(t, repos, "Tower A", models.ProjectStatusScheduled, &admin.ID)

	require.NoError(t, repos.Assignments.CreateBatch(ctx, []models.Assignment{
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-02"},
		{ProjectID: project.ID, WorkerID: other.ID, ScheduledDate: "2026-03-02"},
	}))

	deleted, err := repos.Profiles.Delete(ctx, worker.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	remaining, err := repos.Assignments.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].WorkerID)

	deleted, err = repos.Profiles.Delete(ctx, worker.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeletingAdminDetachesCreatedProjects(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	admin := seedProfile(t, repos, "admin@example.com", models.RoleAdmin, "Admin")
	project := seedProject(t, repos, "Tower A", models.ProjectStatusPending, &admin.ID)

	_, err := repos.Profiles.Delete(ctx, admin.ID)
	require.NoError(t, err)

	reloaded, ok, err := repos.Projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, reloaded.CreatedBy)
}

func TestDeletingProjectCascadesAndDetachesLeads(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	worker := seedProfile(t, repos, "worker@example.com", models.RoleWorker, "Worker")
	project := seedProject(t, repos, "Tower A", models.ProjectStatusScheduled, nil)

	require.NoError(t, repos.Assignments.CreateBatch(ctx, []models.Assignment{
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-02"},
	}))
	lead := models.Lead{ProjectName: "Tower A", GCEmail: "gc@example.com", ConvertedProjectID: &project.ID}
	require.NoError(t, repos.Leads.Create(ctx, &lead))

	deleted, err := repos.Projects.Delete(ctx, project.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	assignments, err := repos.Assignments.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	reloaded, ok, err := repos.Leads.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, reloaded.ConvertedProjectID)
}

func TestAssignmentRepositoryPreloadsProjectAndWorker(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	worker := seedProfile(t, repos, "worker@example.com", models.RoleWorker, "Worker")
	project := seedProject(t, repos, "Tower A", models.ProjectStatusScheduled, nil)

	require.NoError(t, repos.Assignments.CreateBatch(ctx, []models.Assignment{
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-03", StartTime: "13:00"},
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-03", StartTime: "07:30"},
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-09"},
	}))

	week, err := repos.Assignments.ListForWorkerBetween(ctx, worker.ID, "2026-03-02", "2026-03-09")
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, "07:30", week[0].StartTime)
	require.NotNil(t, week[0].Project)
	require.NotNil(t, week[0].Worker)
	assert.Equal(t, "Tower A", week[0].Project.Name)
	assert.Equal(t, "Worker", week[0].Worker.FullName)
	assert.Equal(t, models.AssignmentStatusScheduled, week[0].Status)

	count, err := repos.Assignments.CountOnDate(ctx, "2026-03-03")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestAssignmentRepositoryWorkerStats(t *testing.T) {
	repos, _ := newTestRepositories(t)
	ctx := context.Background()
	worker := seedProfile(t, repos, "worker@example.com", models.RoleWorker, "Worker")
	project := seedProject(t, repos, "Tower A", models.ProjectStatusScheduled, nil)

	require.NoError(t, repos.Assignments.CreateBatch(ctx, []models.Assignment{
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-02-20", Status: models.AssignmentStatusCompleted},
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-01", Status: models.AssignmentStatusCompleted},
		{ProjectID: project.ID, WorkerID: worker.ID, ScheduledDate: "2026-03-15"},
	}))

	stats, err := repos.Assignments.WorkerStats(ctx, worker.ID, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, models.WorkerJobStats{TotalJobs: 3, CompletedJobs: 2, ThisMonth: 2}, stats)
}

func TestLeadIntakeForcesWebsiteSourceAndNewStatus(t *testing.T) {
	repos, intake := newTestRepositories(t)
	ctx := context.Background()

	lead := models.Lead{
		ProjectName: "Harbor Lofts",
		GCEmail:     "gc@example.com",
		Phase:       models.PhaseFinal,
		Source:      "manual",
		Status:      models.LeadStatusWon,
	}
	require.NoError(t, intake.InsertPublicLead(ctx, &lead))
	require.NotEmpty(t, lead.ID)

	stored, ok, err := repos.Leads.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.LeadSourceWebsite, stored.Source)
	assert.Equal(t, models.LeadStatusNew, stored.Status)

	newLeads, err := repos.Leads.List(ctx, models.LeadStatusNew)
	require.NoError(t, err)
	assert.Len(t, newLeads, 1)

	won, err := repos.Leads.List(ctx, models.LeadStatusWon)
	require.NoError(t, err)
	assert.Empty(t, won)
}
