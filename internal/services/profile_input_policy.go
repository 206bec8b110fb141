package services

import (
	"strings"

	"github.com/terraincognita07/crewdesk/internal/models"
)

type ProfileUpdateInput struct {
	FullName string `json:"full_name" form:"full_name"`
	Phone    string `json:"phone" form:"phone"`
}

// WorkerUpdateInput is the admin edit of any profile; Role is optional.
type WorkerUpdateInput struct {
	FullName string `json:"full_name" form:"full_name"`
	Phone    string `json:"phone" form:"phone"`
	Role     string `json:"role" form:"role"`
}

func ValidateProfileUpdate(input ProfileUpdateInput) (map[string]any, error) {
	errs := fieldErrors{}
	fullName := strings.TrimSpace(input.FullName)
	phone := strings.TrimSpace(input.Phone)

	checkMaxLength(errs, "full_name", fullName, fullNameMaxLength)
	checkOptionalPhone(errs, "phone", phone)

	if err := errs.err(); err != nil {
		return nil, err
	}
	return map[string]any{"full_name": fullName, "phone": phone}, nil
}

func ValidateWorkerUpdate(input WorkerUpdateInput) (map[string]any, error) {
	errs := fieldErrors{}
	fullName := strings.TrimSpace(input.FullName)
	phone := strings.TrimSpace(input.Phone)

	checkMaxLength(errs, "full_name", fullName, fullNameMaxLength)
	checkOptionalPhone(errs, "phone", phone)

	columns := map[string]any{"full_name": fullName, "phone": phone}
	if rawRole := strings.TrimSpace(input.Role); rawRole != "" {
		role, ok := models.ParseRole(rawRole)
		if !ok {
			errs.add("role", "Role must be admin or worker")
		}
		columns["role"] = role
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return columns, nil
}
