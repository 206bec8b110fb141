package services

import (
	"context"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

// DefaultStoreTimeout bounds each store call when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// Viewer is the request-scoped identity resolved once by the gate and handed
// to every service call that applies row-level rules.
type Viewer struct {
	ProfileID string
	Role      models.Role
}

func ViewerOf(profile models.Profile) Viewer {
	return Viewer{ProfileID: profile.ID, Role: profile.Role}
}

func (viewer Viewer) IsAdmin() bool {
	return viewer.Role == models.RoleAdmin
}

// storeBound is embedded by services that talk to the row store.
type storeBound struct {
	timeout time.Duration
	now     func() time.Time
}

func newStoreBound(timeout time.Duration) storeBound {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return storeBound{timeout: timeout, now: time.Now}
}

func (bound storeBound) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, bound.timeout)
}
