package services

import (
	"strings"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const (
	leadProjectNameMin = 2
	leadProjectNameMax = 100
	leadMessageMax     = 1000
	contactNameMax     = 100
	companyNameMax     = 100
	leadAddressMax     = 200
)

// LeadSubmissionInput is the public bid request form.
type LeadSubmissionInput struct {
	ProjectName        string      `json:"project_name" form:"project_name"`
	SqFootage          NumberField `json:"sq_footage" form:"sq_footage"`
	Phase              string      `json:"phase" form:"phase"`
	EstimatedStartDate string      `json:"estimated_start_date" form:"estimated_start_date"`
	GCEmail            string      `json:"gc_email" form:"gc_email"`
	GCName             string      `json:"gc_name" form:"gc_name"`
	GCPhone            string      `json:"gc_phone" form:"gc_phone"`
	Message            string      `json:"message" form:"message"`
}

// LeadInput is the admin form for manual entry and edits.
type LeadInput struct {
	ProjectName        string      `json:"project_name" form:"project_name"`
	SqFootage          NumberField `json:"sq_footage" form:"sq_footage"`
	Phase              string      `json:"phase" form:"phase"`
	EstimatedStartDate string      `json:"estimated_start_date" form:"estimated_start_date"`
	GCEmail            string      `json:"gc_email" form:"gc_email"`
	GCName             string      `json:"gc_name" form:"gc_name"`
	GCPhone            string      `json:"gc_phone" form:"gc_phone"`
	CompanyName        string      `json:"company_name" form:"company_name"`
	Address            string      `json:"address" form:"address"`
	Message            string      `json:"message" form:"message"`
	Status             string      `json:"status" form:"status"`
}

// LeadFormLimits is published with the landing page so clients can mirror
// the server-side bounds.
type LeadFormLimits struct {
	ProjectNameMin int `json:"project_name_min"`
	ProjectNameMax int `json:"project_name_max"`
	SqFootageMin   int `json:"sq_footage_min"`
	SqFootageMax   int `json:"sq_footage_max"`
	MessageMax     int `json:"message_max"`
}

func PublicLeadFormLimits() LeadFormLimits {
	return LeadFormLimits{
		ProjectNameMin: leadProjectNameMin,
		ProjectNameMax: leadProjectNameMax,
		SqFootageMin:   sqFootageMin,
		SqFootageMax:   sqFootageMax,
		MessageMax:     leadMessageMax,
	}
}

// ValidateLeadSubmission returns the lead to insert. Phase is required on the
// public form.
func ValidateLeadSubmission(input LeadSubmissionInput) (models.Lead, error) {
	errs := fieldErrors{}
	lead := models.Lead{
		ProjectName: strings.TrimSpace(input.ProjectName),
		GCEmail:     strings.ToLower(strings.TrimSpace(input.GCEmail)),
		GCName:      strings.TrimSpace(input.GCName),
		GCPhone:     strings.TrimSpace(input.GCPhone),
		Message:     strings.TrimSpace(input.Message),
	}

	checkLeadProjectName(errs, lead.ProjectName)
	lead.SqFootage = optionalSqFootage(errs, "sq_footage", input.SqFootage)

	rawPhase := strings.TrimSpace(input.Phase)
	if rawPhase == "" {
		errs.add("phase", "Please select a cleaning phase")
	} else if phase, ok := models.ParsePhase(rawPhase); ok {
		lead.Phase = phase
	} else {
		errs.add("phase", "Please select a cleaning phase")
	}

	lead.EstimatedStartDate = checkOptionalDate(errs, "estimated_start_date", input.EstimatedStartDate)
	checkLeadContact(errs, lead.GCEmail, lead.GCName, lead.GCPhone)
	checkMaxLength(errs, "message", lead.Message, leadMessageMax)

	if err := errs.err(); err != nil {
		return models.Lead{}, err
	}
	return lead, nil
}

// ValidateLeadInput covers admin entry: phase and status are optional but
// must be known values when given.
func ValidateLeadInput(input LeadInput) (models.Lead, error) {
	errs := fieldErrors{}
	lead := models.Lead{
		ProjectName: strings.TrimSpace(input.ProjectName),
		GCEmail:     strings.ToLower(strings.TrimSpace(input.GCEmail)),
		GCName:      strings.TrimSpace(input.GCName),
		GCPhone:     strings.TrimSpace(input.GCPhone),
		CompanyName: strings.TrimSpace(input.CompanyName),
		Address:     strings.TrimSpace(input.Address),
		Message:     strings.TrimSpace(input.Message),
	}

	checkLeadProjectName(errs, lead.ProjectName)
	lead.SqFootage = optionalSqFootage(errs, "sq_footage", input.SqFootage)

	if rawPhase := strings.TrimSpace(input.Phase); rawPhase != "" {
		phase, ok := models.ParsePhase(rawPhase)
		if !ok {
			errs.add("phase", "Please select a cleaning phase")
		}
		lead.Phase = phase
	}
	if rawStatus := strings.TrimSpace(input.Status); rawStatus != "" {
		status, ok := models.ParseLeadStatus(rawStatus)
		if !ok {
			errs.add("status", "Unknown lead status")
		}
		lead.Status = status
	}

	lead.EstimatedStartDate = checkOptionalDate(errs, "estimated_start_date", input.EstimatedStartDate)
	checkLeadContact(errs, lead.GCEmail, lead.GCName, lead.GCPhone)
	checkMaxLength(errs, "company_name", lead.CompanyName, companyNameMax)
	checkMaxLength(errs, "address", lead.Address, leadAddressMax)
	checkMaxLength(errs, "message", lead.Message, leadMessageMax)

	if err := errs.err(); err != nil {
		return models.Lead{}, err
	}
	return lead, nil
}

func checkLeadProjectName(errs fieldErrors, name string) {
	switch length := runeLength(name); {
	case length < leadProjectNameMin:
		errs.add("project_name", "Project name must be at least 2 characters")
	case length > leadProjectNameMax:
		errs.add("project_name", "Project name must be less than 100 characters")
	}
}

func checkLeadContact(errs fieldErrors, email string, name string, phone string) {
	if !isValidEmail(email) {
		errs.add("gc_email", "Please enter a valid email address")
	}
	checkMaxLength(errs, "gc_name", name, contactNameMax)
	checkOptionalPhone(errs, "gc_phone", phone)
}

func checkOptionalDate(errs fieldErrors, field string, raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if _, ok := parseCalendarDate(value); !ok {
		errs.add(field, "Please enter a valid date")
		return ""
	}
	return value
}
