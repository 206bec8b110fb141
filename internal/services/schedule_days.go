package services

import (
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

type ScheduleDay struct {
	Date        string              `json:"date"`
	Weekday     string              `json:"weekday"`
	IsToday     bool                `json:"is_today"`
	Assignments []models.Assignment `json:"assignments"`
}

// WeekStart returns the Monday on or before day.
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return dateOnly(day).AddDate(0, 0, -offset)
}

func MonthStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
}

// GroupAssignmentsByDate buckets assignments into consecutive days starting
// at from. Every day gets a bucket, including empty ones, and assignments
// outside the range are dropped.
func GroupAssignmentsByDate(from time.Time, days int, today string, assignments []models.Assignment) []ScheduleDay {
	buckets := make([]ScheduleDay, 0, days)
	index := make(map[string]int, days)
	start := dateOnly(from)
	for offset := 0; offset < days; offset++ {
		day := start.AddDate(0, 0, offset)
		key := day.Format(models.DateLayout)
		index[key] = len(buckets)
		buckets = append(buckets, ScheduleDay{
			Date:        key,
			Weekday:     day.Weekday().String(),
			IsToday:     key == today,
			Assignments: []models.Assignment{},
		})
	}

	for _, assignment := range assignments {
		position, ok := index[assignment.ScheduledDate]
		if !ok {
			continue
		}
		buckets[position].Assignments = append(buckets[position].Assignments, assignment)
	}
	return buckets
}

func dateOnly(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}
