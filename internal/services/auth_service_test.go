package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/security"
)

func newTestAuthService(t *testing.T, profiles *memoryProfiles) *AuthService {
	t.Helper()
	return NewAuthService(profiles, security.NewTokenIssuer([]byte("test-secret-test-secret-test-secret")), 0)
}

func seedProfile(t *testing.T, profiles *memoryProfiles, email string, password string, role models.Role) models.Profile {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	profile := models.Profile{Email: email, PasswordHash: hash, FullName: "Seeded", Role: role}
	if err := profiles.Create(context.Background(), &profile); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return profile
}

func TestSignUpCreatesWorkerAndRejectsDuplicates(t *testing.T) {
	profiles := newMemoryProfiles()
	service := newTestAuthService(t, profiles)
	ctx := context.Background()

	profile, err := service.SignUp(ctx, SignupInput{
		Email:           "New.Hire@Example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FullName:        "New Hire",
	})
	if err != nil {
		t.Fatalf("SignUp() unexpected error: %v", err)
	}
	if profile.Role != models.RoleWorker || profile.Email != "new.hire@example.com" {
		t.Fatalf("unexpected profile: %#v", profile)
	}
	if profile.PasswordHash == "secret1" {
		t.Fatal("password must be stored hashed")
	}

	_, err = service.SignUp(ctx, SignupInput{
		Email:           "new.hire@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FullName:        "New Hire",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignInHidesWhichCredentialFailed(t *testing.T) {
	profiles := newMemoryProfiles()
	seedProfile(t, profiles, "crew@example.com", "secret1", models.RoleWorker)
	service := newTestAuthService(t, profiles)
	ctx := context.Background()

	if _, err := service.SignIn(ctx, LoginInput{Email: "CREW@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("SignIn() unexpected error: %v", err)
	}
	if _, err := service.SignIn(ctx, LoginInput{Email: "crew@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.SignIn(ctx, LoginInput{Email: "ghost@example.com", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestResolveSessionReadsRoleFromProfile(t *testing.T) {
	profiles := newMemoryProfiles()
	profile := seedProfile(t, profiles, "boss@example.com", "secret1", models.RoleWorker)
	service := newTestAuthService(t, profiles)
	ctx := context.Background()

	token, _, err := service.IssueSession(profile)
	if err != nil {
		t.Fatalf("IssueSession() unexpected error: %v", err)
	}

	promoted := profiles.byID[profile.ID]
	promoted.Role = models.RoleAdmin
	profiles.byID[profile.ID] = promoted

	resolved, _, err := service.ResolveSession(ctx, token)
	if err != nil {
		t.Fatalf("ResolveSession() unexpected error: %v", err)
	}
	if resolved.Role != models.RoleAdmin {
		t.Fatalf("expected role from profile row, got %q", resolved.Role)
	}

	delete(profiles.byID, profile.ID)
	if _, _, err := service.ResolveSession(ctx, token); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound for deleted profile, got %v", err)
	}
}

func TestRoleOfRejectsUnknownRole(t *testing.T) {
	profiles := newMemoryProfiles(models.Profile{ID: "p1", Role: "owner"})
	service := newTestAuthService(t, profiles)

	if _, err := service.RoleOf(context.Background(), "p1"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := service.RoleOf(context.Background(), "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestExchangeCallbackCodeIsSingleUse(t *testing.T) {
	profiles := newMemoryProfiles()
	profile := seedProfile(t, profiles, "admin@example.com", "secret1", models.RoleAdmin)
	service := newTestAuthService(t, profiles)
	ctx := context.Background()

	code, err := service.IssueCallbackCode(profile)
	if err != nil {
		t.Fatalf("IssueCallbackCode() unexpected error: %v", err)
	}

	exchanged, err := service.ExchangeCallbackCode(ctx, code)
	if err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}
	if exchanged.ID != profile.ID {
		t.Fatalf("exchanged wrong profile %q", exchanged.ID)
	}
	if _, err := service.ExchangeCallbackCode(ctx, code); !errors.Is(err, ErrInvalidCallbackCode) {
		t.Fatalf("expected replay to fail, got %v", err)
	}
	if _, err := service.ExchangeCallbackCode(ctx, "garbage"); !errors.Is(err, ErrInvalidCallbackCode) {
		t.Fatalf("expected garbage code to fail, got %v", err)
	}
}

func TestExchangeCallbackCodeRejectsAfterPasswordChange(t *testing.T) {
	profiles := newMemoryProfiles()
	profile := seedProfile(t, profiles, "admin@example.com", "secret1", models.RoleAdmin)
	service := newTestAuthService(t, profiles)
	ctx := context.Background()

	code, err := service.IssueCallbackCode(profile)
	if err != nil {
		t.Fatalf("IssueCallbackCode() unexpected error: %v", err)
	}

	err = service.ChangePassword(ctx, ViewerOf(profile), PasswordChangeInput{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	})
	if err != nil {
		t.Fatalf("ChangePassword() unexpected error: %v", err)
	}

	if _, err := service.ExchangeCallbackCode(ctx, code); !errors.Is(err, ErrInvalidCallbackCode) {
		t.Fatalf("expected stale code to fail, got %v", err)
	}
}

func TestChangePasswordClearsMustChangeFlag(t *testing.T) {
	profiles := newMemoryProfiles()
	profile := seedProfile(t, profiles, "admin@example.com", "Temp0rary-1", models.RoleAdmin)
	stored := profiles.byID[profile.ID]
	stored.MustChangePassword = true
	profiles.byID[profile.ID] = stored
	service := newTestAuthService(t, profiles)
	ctx := context.Background()

	err := service.ChangePassword(ctx, ViewerOf(profile), PasswordChangeInput{
		CurrentPassword: "wrong-one",
		NewPassword:     "permanent1",
		ConfirmPassword: "permanent1",
	})
	if !errors.Is(err, ErrCurrentPasswordInvalid) {
		t.Fatalf("expected ErrCurrentPasswordInvalid, got %v", err)
	}

	err = service.ChangePassword(ctx, ViewerOf(profile), PasswordChangeInput{
		CurrentPassword: "Temp0rary-1",
		NewPassword:     "permanent1",
		ConfirmPassword: "permanent1",
	})
	if err != nil {
		t.Fatalf("ChangePassword() unexpected error: %v", err)
	}
	updated := profiles.byID[profile.ID]
	if updated.MustChangePassword {
		t.Fatal("expected must_change_password to be cleared")
	}
	if security.ComparePassword(updated.PasswordHash, "permanent1") != nil {
		t.Fatal("expected new password to be stored")
	}
}

func TestUsedCallbackCodesArePruned(t *testing.T) {
	service := newTestAuthService(t, newMemoryProfiles())
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	if !service.markCodeUsed("old", now.Add(time.Minute)) {
		t.Fatal("expected first use to be accepted")
	}
	now = now.Add(2 * time.Minute)
	if !service.markCodeUsed("new", now.Add(time.Minute)) {
		t.Fatal("expected second code to be accepted")
	}
	if _, kept := service.usedCodes["old"]; kept {
		t.Fatal("expected expired code id to be pruned")
	}
}
