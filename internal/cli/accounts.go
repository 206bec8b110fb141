package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/terraincognita07/crewdesk/internal/db"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/security"
	"github.com/terraincognita07/crewdesk/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	commandTimeout            = 30 * time.Second
	minPromptedPasswordLength = 6
)

type Options struct {
	Database  db.Options
	SecretKey string
	BaseURL   string
	Logger    *zap.Logger
	Out       io.Writer
}

// Accounts runs account maintenance against an open database.
type Accounts struct {
	profiles *db.ProfileRepository
	auth     *services.AuthService
	baseURL  string
	out      io.Writer

	readPassword func() ([]byte, error)
}

func NewAccounts(database *gorm.DB, secretKey string, baseURL string, out io.Writer) *Accounts {
	if out == nil {
		out = os.Stdout
	}
	profiles := db.NewProfileRepository(database)
	return &Accounts{
		profiles: profiles,
		auth:     services.NewAuthService(profiles, security.NewTokenIssuer([]byte(secretKey)), commandTimeout),
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		out:      out,
		readPassword: func() ([]byte, error) {
			return readSecretLine(os.Stdin)
		},
	}
}

func RunCreateAdminCommand(options Options, email string, fullName string, promptPassword bool) error {
	return withAccounts(options, func(ctx context.Context, accounts *Accounts) error {
		return accounts.CreateAdmin(ctx, email, fullName, promptPassword)
	})
}

func RunResetPasswordCommand(options Options, email string) error {
	return withAccounts(options, func(ctx context.Context, accounts *Accounts) error {
		return accounts.ResetPassword(ctx, email)
	})
}

func withAccounts(options Options, run func(ctx context.Context, accounts *Accounts) error) error {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	database, err := db.Open(options.Database, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return run(ctx, NewAccounts(database, options.SecretKey, options.BaseURL, options.Out))
}

// CreateAdmin creates an admin profile, or promotes the existing profile with
// that email. Without a prompted password the account gets a temporary one
// that must be replaced on first sign-in.
func (accounts *Accounts) CreateAdmin(ctx context.Context, email string, fullName string, promptPassword bool) error {
	normalizedEmail, err := normalizeCommandEmail(email)
	if err != nil {
		return err
	}

	password, temporary, err := accounts.choosePassword(promptPassword)
	if err != nil {
		return err
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	profile, found, err := accounts.profiles.FindByEmail(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	if found {
		updates := map[string]any{"role": models.RoleAdmin}
		if name := strings.TrimSpace(fullName); name != "" {
			updates["full_name"] = name
		}
		if _, err := accounts.profiles.UpdateFields(ctx, profile.ID, updates); err != nil {
			return fmt.Errorf("promote profile: %w", err)
		}
		if err := accounts.profiles.UpdatePassword(ctx, profile.ID, passwordHash, temporary); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
	} else {
		profile = models.Profile{
			Email:              normalizedEmail,
			FullName:           strings.TrimSpace(fullName),
			PasswordHash:       passwordHash,
			Role:               models.RoleAdmin,
			MustChangePassword: temporary,
		}
		if err := accounts.profiles.Create(ctx, &profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	}

	profile.PasswordHash = passwordHash
	if found {
		fmt.Fprintf(accounts.out, "Promoted %s to admin\n", normalizedEmail)
	} else {
		fmt.Fprintf(accounts.out, "Created admin %s\n", normalizedEmail)
	}
	return accounts.printCredentials(profile, password, temporary)
}

func (accounts *Accounts) ResetPassword(ctx context.Context, email string) error {
	normalizedEmail, err := normalizeCommandEmail(email)
	if err != nil {
		return err
	}

	profile, found, err := accounts.profiles.FindByEmail(ctx, normalizedEmail)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return fmt.Errorf("profile %s not found", normalizedEmail)
	}

	password, err := security.TemporaryPassword()
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := accounts.profiles.UpdatePassword(ctx, profile.ID, passwordHash, true); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	profile.PasswordHash = passwordHash
	fmt.Fprintf(accounts.out, "Password reset for %s\n", normalizedEmail)
	return accounts.printCredentials(profile, password, true)
}

func (accounts *Accounts) choosePassword(prompt bool) (string, bool, error) {
	if !prompt {
		password, err := security.TemporaryPassword()
		if err != nil {
			return "", false, fmt.Errorf("generate temporary password: %w", err)
		}
		return password, true, nil
	}

	fmt.Fprint(accounts.out, "Password: ")
	raw, err := accounts.readPassword()
	fmt.Fprintln(accounts.out)
	if err != nil {
		return "", false, fmt.Errorf("read password: %w", err)
	}
	password := string(raw)
	if len([]rune(password)) < minPromptedPasswordLength {
		return "", false, fmt.Errorf("password must be at least %d characters", minPromptedPasswordLength)
	}
	return password, false, nil
}

func (accounts *Accounts) printCredentials(profile models.Profile, password string, temporary bool) error {
	if temporary {
		fmt.Fprintf(accounts.out, "Temporary password: %s\n", password)
		fmt.Fprintln(accounts.out, "The password must be changed after the next sign-in.")
	}

	code, err := accounts.auth.IssueCallbackCode(profile)
	if err != nil {
		return fmt.Errorf("issue sign-in code: %w", err)
	}
	fmt.Fprintf(accounts.out, "Sign-in link (valid %s): %s\n", security.CallbackCodeTTL, accounts.signInLink(code))
	return nil
}

func (accounts *Accounts) signInLink(code string) string {
	return accounts.baseURL + "/api/auth/callback?code=" + url.QueryEscape(code)
}

func normalizeCommandEmail(raw string) (string, error) {
	email := services.NormalizeAuthEmail(raw)
	if email == "" {
		return "", errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email address: %w", err)
	}
	return email, nil
}
