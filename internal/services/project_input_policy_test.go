package services

import (
	"testing"

	"github.com/terraincognita07/crewdesk/internal/models"
)

func validProjectInput() ProjectInput {
	return ProjectInput{
		Name:    "Harbor Lofts",
		Address: "100 Pier Ave",
		City:    "Tampa",
		State:   "fl",
	}
}

func TestValidateProjectInputNormalizes(t *testing.T) {
	input := validProjectInput()
	input.EstimatedHours = "12.5"
	input.Price = "4800"

	project, err := ValidateProjectInput(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.State != "FL" {
		t.Fatalf("expected state to be uppercased, got %q", project.State)
	}
	if project.Phase != "" || project.Status != "" {
		t.Fatalf("expected phase and status to stay unset, got %#v", project)
	}
	if project.EstimatedHours == nil || *project.EstimatedHours != 12.5 {
		t.Fatalf("unexpected estimated hours %v", project.EstimatedHours)
	}
	if _, hasStatus := projectColumns(project)["status"]; hasStatus {
		t.Fatal("blank status must not be written on edit")
	}
}

func TestValidateProjectInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProjectInput)
		field  string
	}{
		{name: "long state", mutate: func(input *ProjectInput) { input.State = "Florida" }, field: "state"},
		{name: "short address", mutate: func(input *ProjectInput) { input.Address = "1 A" }, field: "address"},
		{name: "bad zip", mutate: func(input *ProjectInput) { input.ZipCode = "3360" }, field: "zip_code"},
		{name: "bad phase", mutate: func(input *ProjectInput) { input.Phase = "deep" }, field: "phase"},
		{name: "bad status", mutate: func(input *ProjectInput) { input.Status = "archived" }, field: "status"},
		{name: "hours too low", mutate: func(input *ProjectInput) { input.EstimatedHours = "0.25" }, field: "estimated_hours"},
		{name: "negative price", mutate: func(input *ProjectInput) { input.Price = "-1" }, field: "price"},
		{name: "bad gc email", mutate: func(input *ProjectInput) { input.GCEmail = "gc@" }, field: "gc_email"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			input := validProjectInput()
			testCase.mutate(&input)
			_, err := ValidateProjectInput(input)
			validationErr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := validationErr.FieldErrors[testCase.field]; !ok {
				t.Fatalf("expected error on %s, got %#v", testCase.field, validationErr.FieldErrors)
			}
		})
	}
}

func TestValidateProjectInputAcceptsKnownEnums(t *testing.T) {
	input := validProjectInput()
	input.Phase = "Punch"
	input.Status = "IN_PROGRESS"
	input.ZipCode = "33602-1234"

	project, err := ValidateProjectInput(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Phase != models.PhasePunch || project.Status != models.ProjectStatusInProgress {
		t.Fatalf("unexpected enums: %q %q", project.Phase, project.Status)
	}
}
