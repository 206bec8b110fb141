package services

import (
	"strings"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const (
	projectNameMax   = 100
	projectGateMax   = 50
	projectNotesMax  = 2000
	projectPriceMax  = 10_000_000
	projectHoursMin  = 0.5
	projectHoursMax  = 1000
	projectActualMax = 10_000
)

type ProjectInput struct {
	Name           string      `json:"name" form:"name"`
	Address        string      `json:"address" form:"address"`
	City           string      `json:"city" form:"city"`
	State          string      `json:"state" form:"state"`
	ZipCode        string      `json:"zip_code" form:"zip_code"`
	SqFootage      NumberField `json:"sq_footage" form:"sq_footage"`
	Phase          string      `json:"phase" form:"phase"`
	Status         string      `json:"status" form:"status"`
	GCName         string      `json:"gc_name" form:"gc_name"`
	GCEmail        string      `json:"gc_email" form:"gc_email"`
	GCPhone        string      `json:"gc_phone" form:"gc_phone"`
	GateCode       string      `json:"gate_code" form:"gate_code"`
	SiteNotes      string      `json:"site_notes" form:"site_notes"`
	EstimatedHours NumberField `json:"estimated_hours" form:"estimated_hours"`
	ActualHours    NumberField `json:"actual_hours" form:"actual_hours"`
	Price          NumberField `json:"price" form:"price"`
}

// ValidateProjectInput returns the normalized project fields. Phase may be
// left empty until a bid is accepted.
func ValidateProjectInput(input ProjectInput) (models.Project, error) {
	errs := fieldErrors{}
	project := models.Project{
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		City:      strings.TrimSpace(input.City),
		State:     strings.ToUpper(strings.TrimSpace(input.State)),
		ZipCode:   strings.TrimSpace(input.ZipCode),
		GCName:    strings.TrimSpace(input.GCName),
		GCEmail:   strings.ToLower(strings.TrimSpace(input.GCEmail)),
		GCPhone:   strings.TrimSpace(input.GCPhone),
		GateCode:  strings.TrimSpace(input.GateCode),
		SiteNotes: strings.TrimSpace(input.SiteNotes),
	}

	switch length := runeLength(project.Name); {
	case length < 2:
		errs.add("name", "Project name must be at least 2 characters")
	case length > projectNameMax:
		errs.add("name", "Project name must be less than 100 characters")
	}
	if runeLength(project.Address) < 5 {
		errs.add("address", "Please enter a valid address")
	}
	if runeLength(project.City) < 2 {
		errs.add("city", "Please enter a city")
	}
	if runeLength(project.State) != 2 {
		errs.add("state", "Please use 2-letter state code")
	}
	if project.ZipCode != "" && !zipPattern.MatchString(project.ZipCode) {
		errs.add("zip_code", "Please enter a valid ZIP code")
	}

	project.SqFootage = optionalSqFootage(errs, "sq_footage", input.SqFootage)

	if rawPhase := strings.TrimSpace(input.Phase); rawPhase != "" {
		phase, ok := models.ParsePhase(rawPhase)
		if !ok {
			errs.add("phase", "Please select a cleaning phase")
		}
		project.Phase = phase
	}
	if rawStatus := strings.TrimSpace(input.Status); rawStatus != "" {
		status, ok := models.ParseProjectStatus(rawStatus)
		if !ok {
			errs.add("status", "Unknown project status")
		}
		project.Status = status
	}

	checkMaxLength(errs, "gc_name", project.GCName, contactNameMax)
	if project.GCEmail != "" && !isValidEmail(project.GCEmail) {
		errs.add("gc_email", "Please enter a valid email address")
	}
	checkOptionalPhone(errs, "gc_phone", project.GCPhone)
	checkMaxLength(errs, "gate_code", project.GateCode, projectGateMax)
	checkMaxLength(errs, "site_notes", project.SiteNotes, projectNotesMax)

	project.EstimatedHours = optionalBoundedFloat(errs, "estimated_hours", input.EstimatedHours,
		projectHoursMin, projectHoursMax, "Estimated hours must be between 0.5 and 1000")
	project.ActualHours = optionalBoundedFloat(errs, "actual_hours", input.ActualHours,
		0, projectActualMax, "Actual hours must be between 0 and 10000")
	project.Price = optionalBoundedFloat(errs, "price", input.Price,
		0, projectPriceMax, "Price must be between 0 and 10,000,000")

	if err := errs.err(); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// projectColumns is the update set for an edit. Status is excluded when the
// form left it blank so edits never reset the lifecycle.
func projectColumns(project models.Project) map[string]any {
	columns := map[string]any{
		"name":            project.Name,
		"address":         project.Address,
		"city":            project.City,
		"state":           project.State,
		"zip_code":        project.ZipCode,
		"sq_footage":      project.SqFootage,
		"phase":           project.Phase,
		"gc_name":         project.GCName,
		"gc_email":        project.GCEmail,
		"gc_phone":        project.GCPhone,
		"gate_code":       project.GateCode,
		"site_notes":      project.SiteNotes,
		"estimated_hours": project.EstimatedHours,
		"actual_hours":    project.ActualHours,
		"price":           project.Price,
	}
	if project.Status != "" {
		columns["status"] = project.Status
	}
	return columns
}
