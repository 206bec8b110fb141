package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/security"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailTaken             = errors.New("email already registered")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrInvalidCallbackCode    = errors.New("invalid callback code")
	ErrCurrentPasswordInvalid = errors.New("current password invalid")
)

type AuthProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, profileID string) (models.Profile, bool, error)
	FindByEmail(ctx context.Context, email string) (models.Profile, bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, profileID string, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	storeBound
	profiles AuthProfileRepository
	tokens   *security.TokenIssuer

	usedCodesMu sync.Mutex
	usedCodes   map[string]time.Time
}

func NewAuthService(profiles AuthProfileRepository, tokens *security.TokenIssuer, timeout time.Duration) *AuthService {
	return &AuthService{
		storeBound: newStoreBound(timeout),
		profiles:   profiles,
		tokens:     tokens,
		usedCodes:  make(map[string]time.Time),
	}
}

// SignUp always creates a worker; promotion to admin is an admin action.
func (service *AuthService) SignUp(ctx context.Context, input SignupInput) (models.Profile, error) {
	normalized, err := ValidateSignupInput(input)
	if err != nil {
		return models.Profile{}, err
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()

	exists, err := service.profiles.ExistsByEmail(ctx, normalized.Email)
	if err != nil {
		return models.Profile{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.Profile{}, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(normalized.Password)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	profile := models.Profile{
		Email:        normalized.Email,
		PasswordHash: passwordHash,
		FullName:     normalized.FullName,
		Role:         models.RoleWorker,
	}
	if err := service.profiles.Create(ctx, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// SignIn returns ErrInvalidCredentials for both unknown e-mail and wrong
// password.
func (service *AuthService) SignIn(ctx context.Context, input LoginInput) (models.Profile, error) {
	normalized, err := ValidateLoginInput(input)
	if err != nil {
		return models.Profile{}, err
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()

	profile, found, err := service.profiles.FindByEmail(ctx, normalized.Email)
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return models.Profile{}, ErrInvalidCredentials
	}
	if security.ComparePassword(profile.PasswordHash, normalized.Password) != nil {
		return models.Profile{}, ErrInvalidCredentials
	}
	return profile, nil
}

func (service *AuthService) IssueSession(profile models.Profile) (string, time.Time, error) {
	return service.tokens.IssueSession(profile.ID, string(profile.Role))
}

// ResolveSession validates the token and reloads the profile. A valid token
// for a deleted profile is not a session.
func (service *AuthService) ResolveSession(ctx context.Context, rawToken string) (models.Profile, security.SessionClaims, error) {
	claims, err := service.tokens.ParseSession(rawToken)
	if err != nil {
		return models.Profile{}, security.SessionClaims{}, err
	}
	profile, err := service.FindProfile(ctx, claims.ProfileID)
	if err != nil {
		return models.Profile{}, security.SessionClaims{}, err
	}
	return profile, claims, nil
}

func (service *AuthService) FindProfile(ctx context.Context, profileID string) (models.Profile, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	profile, found, err := service.profiles.FindByID(ctx, profileID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

// RoleOf reads the role from the profile row, never from token claims.
func (service *AuthService) RoleOf(ctx context.Context, profileID string) (models.Role, error) {
	profile, err := service.FindProfile(ctx, profileID)
	if err != nil {
		return "", err
	}
	if !profile.Role.Valid() {
		return "", fmt.Errorf("profile %s has unknown role %q", profileID, profile.Role)
	}
	return profile.Role, nil
}

// IssueCallbackCode mints a one-time sign-in code for the admin CLI.
func (service *AuthService) IssueCallbackCode(profile models.Profile) (string, error) {
	return service.tokens.IssueCallbackCode(profile.ID, profile.PasswordHash)
}

// ExchangeCallbackCode redeems a sign-in code once. Codes minted before the
// last password change are rejected.
func (service *AuthService) ExchangeCallbackCode(ctx context.Context, code string) (models.Profile, error) {
	claims, err := service.tokens.ParseCallbackCode(code)
	if err != nil {
		return models.Profile{}, ErrInvalidCallbackCode
	}

	profile, err := service.FindProfile(ctx, claims.ProfileID)
	if errors.Is(err, ErrProfileNotFound) {
		return models.Profile{}, ErrInvalidCallbackCode
	}
	if err != nil {
		return models.Profile{}, err
	}
	if security.PasswordBinding(profile.PasswordHash) != claims.Binding {
		return models.Profile{}, ErrInvalidCallbackCode
	}
	if !service.markCodeUsed(claims.ID, claims.ExpiresAt.Time) {
		return models.Profile{}, ErrInvalidCallbackCode
	}
	return profile, nil
}

func (service *AuthService) ChangePassword(ctx context.Context, viewer Viewer, input PasswordChangeInput) error {
	if err := ValidatePasswordChangeInput(input); err != nil {
		return err
	}

	profile, err := service.FindProfile(ctx, viewer.ProfileID)
	if err != nil {
		return err
	}
	if security.ComparePassword(profile.PasswordHash, input.CurrentPassword) != nil {
		return ErrCurrentPasswordInvalid
	}

	passwordHash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := service.bounded(ctx)
	defer cancel()
	if err := service.profiles.UpdatePassword(ctx, profile.ID, passwordHash, false); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (service *AuthService) markCodeUsed(codeID string, expiresAt time.Time) bool {
	service.usedCodesMu.Lock()
	defer service.usedCodesMu.Unlock()

	now := service.now()
	for id, expiry := range service.usedCodes {
		if now.After(expiry) {
			delete(service.usedCodes, id)
		}
	}
	if _, used := service.usedCodes[codeID]; used {
		return false
	}
	service.usedCodes[codeID] = expiresAt
	return true
}
