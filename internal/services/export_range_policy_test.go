package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

func TestParseLeadExportFilter(t *testing.T) {
	location := time.UTC

	filter, err := ParseLeadExportFilter("", "", "", location)
	if err != nil {
		t.Fatalf("expected empty filter to parse, got %v", err)
	}
	if filter.Status != "" || filter.From != nil || filter.To != nil {
		t.Fatalf("expected empty filter, got %#v", filter)
	}

	filter, err = ParseLeadExportFilter("Won", "2026-02-01", "2026-02-28", location)
	if err != nil {
		t.Fatalf("expected valid filter, got %v", err)
	}
	if filter.Status != models.LeadStatusWon {
		t.Fatalf("expected won status, got %q", filter.Status)
	}
	if filter.From == nil || filter.From.Format(models.DateLayout) != "2026-02-01" {
		t.Fatalf("unexpected from: %v", filter.From)
	}

	tests := []struct {
		name   string
		status string
		from   string
		to     string
		want   error
	}{
		{name: "bad status", status: "archived", want: ErrExportStatusInvalid},
		{name: "bad from", from: "02/01/2026", want: ErrExportFromDateInvalid},
		{name: "bad to", to: "2026-13-01", want: ErrExportToDateInvalid},
		{name: "reversed", from: "2026-03-01", to: "2026-02-01", want: ErrExportRangeInvalid},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ParseLeadExportFilter(testCase.status, testCase.from, testCase.to, location)
			if !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
}
