package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/crewdesk/internal/db"
	"github.com/terraincognita07/crewdesk/internal/metrics"
	"github.com/terraincognita07/crewdesk/internal/ratelimit"
	"github.com/terraincognita07/crewdesk/internal/security"
	"github.com/terraincognita07/crewdesk/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db           *gorm.DB
	tokens       *security.TokenIssuer
	location     *time.Location
	cookieSecure bool
	storeTimeout time.Duration
	logger       *zap.Logger
	metrics      *metrics.Metrics

	intake      services.LeadIntakeStore
	notifier    services.LeadNotifier
	leadLimiter *ratelimit.Limiter
	authLimiter *ratelimit.Limiter

	repositories      *db.Repositories
	authService       *services.AuthService
	leadService       *services.LeadService
	projectService    *services.ProjectService
	assignmentService *services.AssignmentService
	profileService    *services.ProfileService
	dashboardService  *services.DashboardService
	exportService     *services.ExportService

	now func() time.Time
}

// Options wires a Handler. Intake defaults to an intake repository over
// Database; limiters and notifier may be nil.
type Options struct {
	Database     *gorm.DB
	Intake       services.LeadIntakeStore
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	StoreTimeout time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Notifier     services.LeadNotifier
	LeadLimiter  *ratelimit.Limiter
	AuthLimiter  *ratelimit.Limiter
}

func NewHandler(options Options) (*Handler, error) {
	if options.Database == nil {
		return nil, errors.New("database is required")
	}
	if strings.TrimSpace(options.SecretKey) == "" {
		return nil, errors.New("secret key is required")
	}

	location := options.Location
	if location == nil {
		location = time.UTC
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collectors := options.Metrics
	if collectors == nil {
		collectors = metrics.New()
	}
	intake := options.Intake
	if intake == nil {
		intake = db.NewLeadIntakeRepository(options.Database)
	}

	handler := &Handler{
		db:           options.Database,
		tokens:       security.NewTokenIssuer([]byte(options.SecretKey)),
		location:     location,
		cookieSecure: options.CookieSecure,
		storeTimeout: options.StoreTimeout,
		logger:       logger,
		metrics:      collectors,
		intake:       intake,
		notifier:     options.Notifier,
		leadLimiter:  options.LeadLimiter,
		authLimiter:  options.AuthLimiter,
		now:          time.Now,
	}
	handler.ensureDependencies()
	return handler, nil
}
