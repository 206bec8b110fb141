package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/terraincognita07/crewdesk/internal/models"
)

var errStoreDown = errors.New("store unavailable")

type memoryProfiles struct {
	byID map[string]models.Profile

	passwordUpdates int
}

func newMemoryProfiles(profiles ...models.Profile) *memoryProfiles {
	repo := &memoryProfiles{byID: make(map[string]models.Profile)}
	for _, profile := range profiles {
		repo.byID[profile.ID] = profile
	}
	return repo
}

func (repo *memoryProfiles) Create(_ context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	repo.byID[profile.ID] = *profile
	return nil
}

func (repo *memoryProfiles) FindByID(_ context.Context, profileID string) (models.Profile, bool, error) {
	profile, ok := repo.byID[profileID]
	return profile, ok, nil
}

func (repo *memoryProfiles) FindByEmail(_ context.Context, email string) (models.Profile, bool, error) {
	for _, profile := range repo.byID {
		if profile.Email == email {
			return profile, true, nil
		}
	}
	return models.Profile{}, false, nil
}

func (repo *memoryProfiles) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, found, err := repo.FindByEmail(ctx, email)
	return found, err
}

func (repo *memoryProfiles) UpdatePassword(_ context.Context, profileID string, passwordHash string, mustChangePassword bool) error {
	profile := repo.byID[profileID]
	profile.PasswordHash = passwordHash
	profile.MustChangePassword = mustChangePassword
	repo.byID[profileID] = profile
	repo.passwordUpdates++
	return nil
}

func (repo *memoryProfiles) ListAll(context.Context) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, len(repo.byID))
	for _, profile := range repo.byID {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].FullName < profiles[j].FullName })
	return profiles, nil
}

func (repo *memoryProfiles) ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error) {
	all, _ := repo.ListAll(ctx)
	filtered := make([]models.Profile, 0, len(all))
	for _, profile := range all {
		if profile.Role == role {
			filtered = append(filtered, profile)
		}
	}
	return filtered, nil
}

func (repo *memoryProfiles) UpdateFields(_ context.Context, profileID string, updates map[string]any) (bool, error) {
	profile, ok := repo.byID[profileID]
	if !ok {
		return false, nil
	}
	if value, ok := updates["full_name"].(string); ok {
		profile.FullName = value
	}
	if value, ok := updates["phone"].(string); ok {
		profile.Phone = value
	}
	if value, ok := updates["role"].(models.Role); ok {
		profile.Role = value
	}
	repo.byID[profileID] = profile
	return true, nil
}

func (repo *memoryProfiles) Delete(_ context.Context, profileID string) (bool, error) {
	if _, ok := repo.byID[profileID]; !ok {
		return false, nil
	}
	delete(repo.byID, profileID)
	return true, nil
}

type memoryProjects struct {
	byID map[string]models.Project
}

func newMemoryProjects(projects ...models.Project) *memoryProjects {
	repo := &memoryProjects{byID: make(map[string]models.Project)}
	for _, project := range projects {
		repo.byID[project.ID] = project
	}
	return repo
}

func (repo *memoryProjects) FindByID(_ context.Context, projectID string) (models.Project, bool, error) {
	project, ok := repo.byID[projectID]
	return project, ok, nil
}

type memoryAssignments struct {
	rows      []models.Assignment
	createErr error

	updates []map[string]any
}

func (repo *memoryAssignments) CreateBatch(_ context.Context, assignments []models.Assignment) error {
	if repo.createErr != nil {
		return repo.createErr
	}
	for index := range assignments {
		if assignments[index].ID == "" {
			assignments[index].ID = uuid.NewString()
		}
	}
	repo.rows = append(repo.rows, assignments...)
	return nil
}

func (repo *memoryAssignments) FindByID(_ context.Context, assignmentID string) (models.Assignment, bool, error) {
	for _, row := range repo.rows {
		if row.ID == assignmentID {
			return row, true, nil
		}
	}
	return models.Assignment{}, false, nil
}

func (repo *memoryAssignments) ListAll(context.Context) ([]models.Assignment, error) {
	return append([]models.Assignment(nil), repo.rows...), nil
}

func (repo *memoryAssignments) ListBetween(_ context.Context, from string, to string) ([]models.Assignment, error) {
	return repo.filter(func(row models.Assignment) bool {
		return row.ScheduledDate >= from && row.ScheduledDate < to
	}), nil
}

func (repo *memoryAssignments) ListForWorkerBetween(_ context.Context, workerID string, from string, to string) ([]models.Assignment, error) {
	return repo.filter(func(row models.Assignment) bool {
		return row.WorkerID == workerID && row.ScheduledDate >= from && row.ScheduledDate < to
	}), nil
}

func (repo *memoryAssignments) ListForWorkerOnDate(_ context.Context, workerID string, date string) ([]models.Assignment, error) {
	return repo.filter(func(row models.Assignment) bool {
		return row.WorkerID == workerID && row.ScheduledDate == date
	}), nil
}

func (repo *memoryAssignments) CountOnDate(_ context.Context, date string) (int64, error) {
	return int64(len(repo.filter(func(row models.Assignment) bool { return row.ScheduledDate == date }))), nil
}

func (repo *memoryAssignments) UpdateFields(_ context.Context, assignmentID string, updates map[string]any) (bool, error) {
	for index := range repo.rows {
		if repo.rows[index].ID != assignmentID {
			continue
		}
		repo.updates = append(repo.updates, updates)
		if status, ok := updates["status"].(models.AssignmentStatus); ok {
			repo.rows[index].Status = status
		}
		if notes, ok := updates["notes"].(string); ok {
			repo.rows[index].Notes = notes
		}
		return true, nil
	}
	return false, nil
}

func (repo *memoryAssignments) Delete(_ context.Context, assignmentID string) (bool, error) {
	for index, row := range repo.rows {
		if row.ID == assignmentID {
			repo.rows = append(repo.rows[:index], repo.rows[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (repo *memoryAssignments) filter(keep func(models.Assignment) bool) []models.Assignment {
	result := make([]models.Assignment, 0)
	for _, row := range repo.rows {
		if keep(row) {
			result = append(result, row)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].ScheduledDate != result[j].ScheduledDate {
			return result[i].ScheduledDate < result[j].ScheduledDate
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

type spyIntake struct {
	insertErr error
	inserted  []models.Lead
}

func (spy *spyIntake) InsertPublicLead(_ context.Context, lead *models.Lead) error {
	if spy.insertErr != nil {
		return spy.insertErr
	}
	lead.ID = uuid.NewString()
	lead.Source = models.LeadSourceWebsite
	lead.Status = models.LeadStatusNew
	spy.inserted = append(spy.inserted, *lead)
	return nil
}

type spyNotifier struct {
	mu         sync.Mutex
	dispatched []models.Lead
}

func (spy *spyNotifier) Dispatch(lead models.Lead) {
	spy.mu.Lock()
	defer spy.mu.Unlock()
	spy.dispatched = append(spy.dispatched, lead)
}

func (spy *spyNotifier) count() int {
	spy.mu.Lock()
	defer spy.mu.Unlock()
	return len(spy.dispatched)
}

type memoryLeads struct {
	rows    []models.Lead
	listErr error
}

func (repo *memoryLeads) Create(_ context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	repo.rows = append(repo.rows, *lead)
	return nil
}

func (repo *memoryLeads) FindByID(_ context.Context, leadID string) (models.Lead, bool, error) {
	for _, row := range repo.rows {
		if row.ID == leadID {
			return row, true, nil
		}
	}
	return models.Lead{}, false, nil
}

func (repo *memoryLeads) List(_ context.Context, status models.LeadStatus) ([]models.Lead, error) {
	if repo.listErr != nil {
		return nil, repo.listErr
	}
	result := make([]models.Lead, 0, len(repo.rows))
	for _, row := range repo.rows {
		if status == "" || row.Status == status {
			result = append(result, row)
		}
	}
	return result, nil
}

func (repo *memoryLeads) CountByStatus(ctx context.Context, status models.LeadStatus) (int64, error) {
	rows, err := repo.List(ctx, status)
	return int64(len(rows)), err
}

func (repo *memoryLeads) UpdateFields(_ context.Context, leadID string, updates map[string]any) (bool, error) {
	for index := range repo.rows {
		if repo.rows[index].ID != leadID {
			continue
		}
		if status, ok := updates["status"].(models.LeadStatus); ok {
			repo.rows[index].Status = status
		}
		return true, nil
	}
	return false, nil
}

func (repo *memoryLeads) Delete(_ context.Context, leadID string) (bool, error) {
	for index, row := range repo.rows {
		if row.ID == leadID {
			repo.rows = append(repo.rows[:index], repo.rows[index+1:]...)
			return true, nil
		}
	}
	return false, nil
}
