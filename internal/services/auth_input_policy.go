package services

import "strings"

const (
	passwordMinLength = 6
	fullNameMinLength = 2
	fullNameMaxLength = 100
)

type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type SignupInput struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	FullName        string `json:"full_name" form:"full_name"`
}

type PasswordChangeInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// NormalizeAuthEmail lowercases and trims; it does not validate.
func NormalizeAuthEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func ValidateLoginInput(input LoginInput) (LoginInput, error) {
	errs := fieldErrors{}
	normalized := LoginInput{Email: NormalizeAuthEmail(input.Email), Password: input.Password}

	if !isValidEmail(normalized.Email) {
		errs.add("email", "Please enter a valid email address")
	}
	if runeLength(normalized.Password) < passwordMinLength {
		errs.add("password", "Password must be at least 6 characters")
	}

	if err := errs.err(); err != nil {
		return LoginInput{}, err
	}
	return normalized, nil
}

// ValidateSignupInput reports a confirmation mismatch on confirm_password,
// never on password.
func ValidateSignupInput(input SignupInput) (SignupInput, error) {
	errs := fieldErrors{}
	normalized := SignupInput{
		Email:           NormalizeAuthEmail(input.Email),
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		FullName:        strings.TrimSpace(input.FullName),
	}

	if !isValidEmail(normalized.Email) {
		errs.add("email", "Please enter a valid email address")
	}
	if runeLength(normalized.Password) < passwordMinLength {
		errs.add("password", "Password must be at least 6 characters")
	}
	if normalized.Password != normalized.ConfirmPassword {
		errs.add("confirm_password", "Passwords don't match")
	}
	switch length := runeLength(normalized.FullName); {
	case length < fullNameMinLength:
		errs.add("full_name", "Please enter your full name")
	case length > fullNameMaxLength:
		errs.add("full_name", "Name must be 100 characters or fewer")
	}

	if err := errs.err(); err != nil {
		return SignupInput{}, err
	}
	return normalized, nil
}

func ValidatePasswordChangeInput(input PasswordChangeInput) error {
	errs := fieldErrors{}
	if input.CurrentPassword == "" {
		errs.add("current_password", "Please enter your current password")
	}
	if runeLength(input.NewPassword) < passwordMinLength {
		errs.add("new_password", "Password must be at least 6 characters")
	} else if input.NewPassword == input.CurrentPassword {
		errs.add("new_password", "New password must be different from the current one")
	}
	if input.NewPassword != input.ConfirmPassword {
		errs.add("confirm_password", "Passwords don't match")
	}
	return errs.err()
}
