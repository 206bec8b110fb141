package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

func TestWeekStartIsMonday(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{day: "2026-03-02", want: "2026-03-02"},
		{day: "2026-03-04", want: "2026-03-02"},
		{day: "2026-03-08", want: "2026-03-02"},
		{day: "2026-03-09", want: "2026-03-09"},
	}
	for _, testCase := range tests {
		day, _ := time.Parse(models.DateLayout, testCase.day)
		if got := WeekStart(day).Format(models.DateLayout); got != testCase.want {
			t.Fatalf("WeekStart(%s) = %s, want %s", testCase.day, got, testCase.want)
		}
	}
}

func TestGroupAssignmentsByDateKeepsEmptyDays(t *testing.T) {
	start, _ := time.Parse(models.DateLayout, "2026-03-02")
	assignments := []models.Assignment{
		{ID: "a", ScheduledDate: "2026-03-03", StartTime: "08:00"},
		{ID: "b", ScheduledDate: "2026-03-03", StartTime: "13:00"},
		{ID: "c", ScheduledDate: "2026-03-06"},
		{ID: "outside", ScheduledDate: "2026-03-09"},
	}

	days := GroupAssignmentsByDate(start, 7, "2026-03-03", assignments)
	if len(days) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(days))
	}
	if days[0].Date != "2026-03-02" || days[0].Weekday != "Monday" || len(days[0].Assignments) != 0 {
		t.Fatalf("unexpected first day: %#v", days[0])
	}
	if !days[1].IsToday || len(days[1].Assignments) != 2 || days[1].Assignments[0].ID != "a" {
		t.Fatalf("unexpected tuesday bucket: %#v", days[1])
	}
	if len(days[4].Assignments) != 1 || days[4].Assignments[0].ID != "c" {
		t.Fatalf("unexpected friday bucket: %#v", days[4])
	}
	for _, day := range days {
		for _, assignment := range day.Assignments {
			if assignment.ID == "outside" {
				t.Fatal("assignment outside the range must be dropped")
			}
		}
	}
}
