package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
	"go.uber.org/zap"
)

var (
	ErrLeadSaveFailed = errors.New("lead save failed")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrInvalidStatus  = errors.New("invalid status")
)

// User-facing messages for the public lead form.
const (
	LeadSaveFailedMessage = "Failed to save your request. Please try again."
	LeadInvalidMessage    = "Please check your form inputs and try again."
	GenericFailureMessage = "Something went wrong. Please try again."
)

// LeadIntakeStore is the elevated write path for unauthenticated visitors.
type LeadIntakeStore interface {
	InsertPublicLead(ctx context.Context, lead *models.Lead) error
}

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, leadID string) (models.Lead, bool, error)
	List(ctx context.Context, status models.LeadStatus) ([]models.Lead, error)
	UpdateFields(ctx context.Context, leadID string, updates map[string]any) (bool, error)
	Delete(ctx context.Context, leadID string) (bool, error)
}

// LeadNotifier must return immediately; delivery is best effort.
type LeadNotifier interface {
	Dispatch(lead models.Lead)
}

type LeadService struct {
	storeBound
	intake   LeadIntakeStore
	leads    LeadRepository
	notifier LeadNotifier
	logger   *zap.Logger
}

func NewLeadService(intake LeadIntakeStore, leads LeadRepository, notifier LeadNotifier, logger *zap.Logger, timeout time.Duration) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{
		storeBound: newStoreBound(timeout),
		intake:     intake,
		leads:      leads,
		notifier:   notifier,
		logger:     logger,
	}
}

// SubmitPublicLead validates, stores through the intake path and hands the
// stored lead to the notifier. A store failure stops before notification; a
// notification failure never reaches the caller.
func (service *LeadService) SubmitPublicLead(ctx context.Context, input LeadSubmissionInput) (string, error) {
	lead, err := ValidateLeadSubmission(input)
	if err != nil {
		return "", err
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()

	if err := service.intake.InsertPublicLead(ctx, &lead); err != nil {
		service.logger.Error("public lead insert failed", zap.Error(err), zap.String("project_name", lead.ProjectName))
		return "", ErrLeadSaveFailed
	}

	if service.notifier != nil {
		service.notifier.Dispatch(lead)
	}
	return lead.ID, nil
}

func (service *LeadService) ListLeads(ctx context.Context, rawStatus string) ([]models.Lead, error) {
	status := models.LeadStatus("")
	if rawStatus != "" {
		parsed, ok := models.ParseLeadStatus(rawStatus)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.leads.List(ctx, status)
}

func (service *LeadService) FindLead(ctx context.Context, leadID string) (models.Lead, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	lead, found, err := service.leads.FindByID(ctx, leadID)
	if err != nil {
		return models.Lead{}, fmt.Errorf("load lead: %w", err)
	}
	if !found {
		return models.Lead{}, ErrLeadNotFound
	}
	return lead, nil
}

// CreateManualLead records a lead entered by an admin.
func (service *LeadService) CreateManualLead(ctx context.Context, input LeadInput) (models.Lead, error) {
	lead, err := ValidateLeadInput(input)
	if err != nil {
		return models.Lead{}, err
	}
	lead.Source = models.LeadSourceManual
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	if err := service.leads.Create(ctx, &lead); err != nil {
		return models.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (service *LeadService) UpdateLead(ctx context.Context, leadID string, input LeadInput) (models.Lead, error) {
	draft, err := ValidateLeadInput(input)
	if err != nil {
		return models.Lead{}, err
	}

	current, err := service.FindLead(ctx, leadID)
	if err != nil {
		return models.Lead{}, err
	}

	columns := map[string]any{
		"project_name":         draft.ProjectName,
		"sq_footage":           draft.SqFootage,
		"phase":                draft.Phase,
		"estimated_start_date": draft.EstimatedStartDate,
		"gc_email":             draft.GCEmail,
		"gc_name":              draft.GCName,
		"gc_phone":             draft.GCPhone,
		"company_name":         draft.CompanyName,
		"address":              draft.Address,
		"message":              draft.Message,
	}
	if draft.Status != "" {
		if err := models.LeadStatusChangeAllowed(current.Status, draft.Status); err != nil {
			return models.Lead{}, ErrInvalidStatus
		}
		columns["status"] = draft.Status
	}

	if err := service.update(ctx, leadID, columns); err != nil {
		return models.Lead{}, err
	}
	return service.FindLead(ctx, leadID)
}

func (service *LeadService) ChangeLeadStatus(ctx context.Context, leadID string, rawStatus string) (models.Lead, error) {
	target, ok := models.ParseLeadStatus(rawStatus)
	if !ok {
		return models.Lead{}, ErrInvalidStatus
	}
	current, err := service.FindLead(ctx, leadID)
	if err != nil {
		return models.Lead{}, err
	}
	if err := models.LeadStatusChangeAllowed(current.Status, target); err != nil {
		return models.Lead{}, ErrInvalidStatus
	}

	if err := service.update(ctx, leadID, map[string]any{"status": target}); err != nil {
		return models.Lead{}, err
	}
	current.Status = target
	return current, nil
}

func (service *LeadService) DeleteLead(ctx context.Context, leadID string) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	deleted, err := service.leads.Delete(ctx, leadID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if !deleted {
		return ErrLeadNotFound
	}
	return nil
}

func (service *LeadService) update(ctx context.Context, leadID string, columns map[string]any) error {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	updated, err := service.leads.UpdateFields(ctx, leadID, columns)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if !updated {
		return ErrLeadNotFound
	}
	return nil
}
