package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/crewdesk/internal/db"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/security"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecretKey = "test-secret-key-with-at-least-32-characters"

type recordingNotifier struct {
	mu    sync.Mutex
	leads []models.Lead
}

func (notifier *recordingNotifier) Dispatch(lead models.Lead) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.leads = append(notifier.leads, lead)
}

func (notifier *recordingNotifier) count() int {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return len(notifier.leads)
}

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	repos    *db.Repositories
	handler  *Handler
	notifier *recordingNotifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithOptions(t, Options{})
}

func newTestAppWithOptions(t *testing.T, options Options) *testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "crewdesk-api-test.db")
	database, err := db.OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	notifier := &recordingNotifier{}
	options.Database = database
	options.SecretKey = testSecretKey
	if options.Notifier == nil {
		options.Notifier = notifier
	}

	handler, err := NewHandler(options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(AppConfig())
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{
		app:      app,
		database: database,
		repos:    handler.repositories,
		handler:  handler,
		notifier: notifier,
	}
}

func createTestProfile(t *testing.T, env *testApp, email string, password string, role models.Role) models.Profile {
	t.Helper()

	passwordHash, err := security.HashPassword(password)
	require.NoError(t, err)
	profile := models.Profile{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FullName:     "Test " + string(role),
		Role:         role,
	}
	require.NoError(t, env.repos.Profiles.Create(context.Background(), &profile))
	return profile
}

func createTestProject(t *testing.T, env *testApp, name string) models.Project {
	t.Helper()

	project := models.Project{
		Name:    name,
		Address: "500 Congress Avenue",
		City:    "Austin",
		State:   "TX",
		Status:  models.ProjectStatusScheduled,
	}
	require.NoError(t, env.repos.Projects.Create(context.Background(), &project))
	return project
}

func createTestAssignment(t *testing.T, env *testApp, projectID string, workerID string, date string) models.Assignment {
	t.Helper()

	batch := []models.Assignment{{
		ProjectID:     projectID,
		WorkerID:      workerID,
		ScheduledDate: date,
		StartTime:     "08:00",
	}}
	require.NoError(t, env.repos.Assignments.CreateBatch(context.Background(), batch))
	require.NotEmpty(t, batch[0].ID)
	return batch[0]
}

func todayDate() string {
	return time.Now().In(time.UTC).Format(models.DateLayout)
}

func signIn(t *testing.T, app *fiber.App, email string, password string) string {
	t.Helper()

	form := url.Values{
		"email":    {email},
		"password": {password},
	}
	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login status 303, got %d", response.StatusCode)
	}
	cookie := responseCookie(response.Cookies(), sessionCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("session cookie is missing in login response")
	}
	return cookie.Name + "=" + cookie.Value
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// doJSON sends payload as JSON (when non-nil) and returns the response with
// its body already read.
func doJSON(t *testing.T, app *fiber.App, method string, path string, cookie string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response, raw
}

func smokeGET(t *testing.T, app *fiber.App, cookie string, path string, expectedStatus int) string {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		t.Fatalf("GET %s expected status %d, got %d", path, expectedStatus, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("GET %s read body failed: %v", path, err)
	}
	return string(body)
}

func decodeJSON(t *testing.T, raw []byte, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}
