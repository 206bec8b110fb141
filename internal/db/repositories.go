package db

import "gorm.io/gorm"

// Repositories groups the authenticated data paths. The public lead intake
// repository is deliberately not part of it.
type Repositories struct {
	Profiles    *ProfileRepository
	Projects    *ProjectRepository
	Assignments *AssignmentRepository
	Leads       *LeadRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:    NewProfileRepository(database),
		Projects:    NewProjectRepository(database),
		Assignments: NewAssignmentRepository(database),
		Leads:       NewLeadRepository(database),
	}
}
