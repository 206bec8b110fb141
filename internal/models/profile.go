package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.Valid()
}

func (role Role) Valid() bool {
	return role == RoleAdmin || role == RoleWorker
}

type Profile struct {
	ID                 string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	FullName           string    `json:"full_name"`
	Phone              string    `json:"phone"`
	Role               Role      `gorm:"type:varchar(16);not null;default:worker" json:"role"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (profile *Profile) BeforeCreate(*gorm.DB) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.Role == "" {
		profile.Role = RoleWorker
	}
	return nil
}

func (profile *Profile) IsAdmin() bool {
	return profile != nil && profile.Role == RoleAdmin
}

// DisplayName falls back to the e-mail address when no name was entered.
func (profile *Profile) DisplayName() string {
	if profile == nil {
		return ""
	}
	if name := strings.TrimSpace(profile.FullName); name != "" {
		return name
	}
	return profile.Email
}
