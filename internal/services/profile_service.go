package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

var ErrCannotDeleteSelf = errors.New("admins cannot delete their own profile")

type ProfileRepository interface {
	FindByID(ctx context.Context, profileID string) (models.Profile, bool, error)
	ListAll(ctx context.Context) ([]models.Profile, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.Profile, error)
	UpdateFields(ctx context.Context, profileID string, updates map[string]any) (bool, error)
	Delete(ctx context.Context, profileID string) (bool, error)
}

type WorkerStatsReader interface {
	WorkerStats(ctx context.Context, workerID string, monthStart string) (models.WorkerJobStats, error)
}

type ProfileOverview struct {
	Profile models.Profile        `json:"profile"`
	Stats   models.WorkerJobStats `json:"stats"`
}

type ProfileService struct {
	storeBound
	profiles ProfileRepository
	stats    WorkerStatsReader
	location *time.Location
}

func NewProfileService(profiles ProfileRepository, stats WorkerStatsReader, location *time.Location, timeout time.Duration) *ProfileService {
	if location == nil {
		location = time.UTC
	}
	return &ProfileService{storeBound: newStoreBound(timeout), profiles: profiles, stats: stats, location: location}
}

func (service *ProfileService) WithClock(now func() time.Time) *ProfileService {
	service.now = now
	return service
}

func (service *ProfileService) FindProfile(ctx context.Context, profileID string) (models.Profile, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	profile, found, err := service.profiles.FindByID(ctx, profileID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

// Overview is the portal profile page: the viewer's profile plus job counts,
// where this_month starts on the first day of the current month.
func (service *ProfileService) Overview(ctx context.Context, viewer Viewer) (ProfileOverview, error) {
	profile, err := service.FindProfile(ctx, viewer.ProfileID)
	if err != nil {
		return ProfileOverview{}, err
	}

	monthStart := MonthStart(service.now().In(service.location)).Format(models.DateLayout)
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	stats, err := service.stats.WorkerStats(ctx, viewer.ProfileID, monthStart)
	if err != nil {
		return ProfileOverview{}, fmt.Errorf("load stats: %w", err)
	}
	return ProfileOverview{Profile: profile, Stats: stats}, nil
}

// UpdateOwnProfile lets any signed-in user edit their own name and phone.
func (service *ProfileService) UpdateOwnProfile(ctx context.Context, viewer Viewer, input ProfileUpdateInput) (models.Profile, error) {
	columns, err := ValidateProfileUpdate(input)
	if err != nil {
		return models.Profile{}, err
	}
	if err := service.update(ctx, viewer.ProfileID, columns); err != nil {
		return models.Profile{}, err
	}
	return service.FindProfile(ctx, viewer.ProfileID)
}

func (service *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.profiles.ListAll(ctx)
}

func (service *ProfileService) ListWorkers(ctx context.Context) ([]models.Profile, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.profiles.ListByRole(ctx, models.RoleWorker)
}

// UpdateWorker is the admin edit of any profile, including its role.
func (service *ProfileService) UpdateWorker(ctx context.Context, profileID string, input WorkerUpdateInput) (models.Profile, error) {
	columns, err := ValidateWorkerUpdate(input)
	if err != nil {
		return models.Profile{}, err
	}
	if err := service.update(ctx, profileID, columns); err != nil {
		return models.Profile{}, err
	}
	return service.FindProfile(ctx, profileID)
}

// DeleteWorker removes a profile and, with it, every assignment it holds.
func (service *ProfileService) DeleteWorker(ctx context.Context, viewer Viewer, profileID string) error {
	if profileID == viewer.ProfileID {
		return ErrCannotDeleteSelf
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	deleted, err := service.profiles.Delete(ctx, profileID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if !deleted {
		return ErrProfileNotFound
	}
	return nil
}

func (service *ProfileService) update(ctx context.Context, profileID string, columns map[string]any) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	updated, err := service.profiles.UpdateFields(ctx, profileID, columns)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if !updated {
		return ErrProfileNotFound
	}
	return nil
}
