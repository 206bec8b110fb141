package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/crewdesk/internal/models"
	"github.com/terraincognita07/crewdesk/internal/security"
)

func gateRequest(t *testing.T, env *testApp, path string, cookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := env.app.Test(request, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func TestGateRedirectsAnonymousCallersToLoginWithOriginalPath(t *testing.T) {
	env := newTestApp(t)

	cases := map[string]string{
		"/admin":             "/login?redirect=%2Fadmin",
		"/admin/projects":    "/login?redirect=%2Fadmin%2Fprojects",
		"/portal":            "/login?redirect=%2Fportal",
		"/portal/schedule":   "/login?redirect=%2Fportal%2Fschedule",
		"/admin/leads?x=1":   "/login?redirect=%2Fadmin%2Fleads",
		"/portal/profile/me": "/login?redirect=%2Fportal%2Fprofile%2Fme",
	}
	for path, location := range cases {
		response := gateRequest(t, env, path, "")
		assert.Equal(t, http.StatusSeeOther, response.StatusCode, path)
		assert.Equal(t, location, response.Header.Get("Location"), path)
	}
}

func TestGateSendsEachRoleHome(t *testing.T) {
	env := newTestApp(t)
	createTestProfile(t, env, "admin@example.com", "adminpass", models.RoleAdmin)
	createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)
	adminCookie := signIn(t, env.app, "admin@example.com", "adminpass")
	workerCookie := signIn(t, env.app, "worker@example.com", "workerpass")

	cases := []struct {
		name     string
		path     string
		cookie   string
		location string
	}{
		{name: "worker on admin", path: "/admin/projects", cookie: workerCookie, location: "/portal"},
		{name: "admin on portal", path: "/portal/schedule", cookie: adminCookie, location: "/admin"},
		{name: "admin on login", path: "/login", cookie: adminCookie, location: "/admin"},
		{name: "worker on signup", path: "/signup", cookie: workerCookie, location: "/portal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response := gateRequest(t, env, tc.path, tc.cookie)
			assert.Equal(t, http.StatusSeeOther, response.StatusCode)
			assert.Equal(t, tc.location, response.Header.Get("Location"))
		})
	}

	smokeGET(t, env.app, adminCookie, "/admin", http.StatusOK)
	smokeGET(t, env.app, workerCookie, "/portal", http.StatusOK)
}

func TestGatePassesPublicRoutesRegardlessOfSession(t *testing.T) {
	env := newTestApp(t)
	createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)
	workerCookie := signIn(t, env.app, "worker@example.com", "workerpass")

	for _, cookie := range []string{"", workerCookie} {
		smokeGET(t, env.app, cookie, "/", http.StatusOK)
		smokeGET(t, env.app, cookie, "/healthz", http.StatusOK)

		response := gateRequest(t, env, "/api/auth/callback", cookie)
		assert.Equal(t, http.StatusSeeOther, response.StatusCode)
		assert.Equal(t, authCallbackErrorPath, response.Header.Get("Location"))
	}

	smokeGET(t, env.app, "", "/login", http.StatusOK)
	smokeGET(t, env.app, "", "/signup", http.StatusOK)
}

func TestGateSkipsStaticAssets(t *testing.T) {
	env := newTestApp(t)

	// Skipped by the gate; the role groups still refuse anonymous callers.
	cases := map[string]int{
		"/static/app.css":  http.StatusNotFound,
		"/admin/logo.png":  http.StatusUnauthorized,
		"/portal/icon.svg": http.StatusUnauthorized,
	}
	for path, status := range cases {
		response := gateRequest(t, env, path, "")
		assert.Equal(t, status, response.StatusCode, path)
		assert.Empty(t, response.Header.Get("Location"), path)
	}
}

func TestGateTreatsDeletedProfileAsSignedOut(t *testing.T) {
	env := newTestApp(t)
	worker := createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)
	cookie := signIn(t, env.app, "worker@example.com", "workerpass")

	_, err := env.repos.Profiles.Delete(context.Background(), worker.ID)
	require.NoError(t, err)

	response := gateRequest(t, env, "/portal", cookie)
	assert.Equal(t, http.StatusSeeOther, response.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fportal", response.Header.Get("Location"))
}

func TestGateIgnoresTamperedSession(t *testing.T) {
	env := newTestApp(t)
	admin := createTestProfile(t, env, "admin@example.com", "adminpass", models.RoleAdmin)

	forged, _, err := security.NewTokenIssuer([]byte("another-secret-key-of-sufficient-length")).IssueSession(admin.ID, "admin")
	require.NoError(t, err)

	response := gateRequest(t, env, "/admin", sessionCookieName+"="+forged)
	assert.Equal(t, http.StatusSeeOther, response.StatusCode)
	assert.True(t, strings.HasPrefix(response.Header.Get("Location"), "/login?redirect="))
}

func TestGateReadsRoleFromProfileNotToken(t *testing.T) {
	env := newTestApp(t)
	worker := createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)

	token, _, err := security.NewTokenIssuer([]byte(testSecretKey)).IssueSession(worker.ID, "admin")
	require.NoError(t, err)

	response := gateRequest(t, env, "/admin", sessionCookieName+"="+token)
	assert.Equal(t, http.StatusSeeOther, response.StatusCode)
	assert.Equal(t, "/portal", response.Header.Get("Location"))
}

func TestGateRefreshesAgingSessions(t *testing.T) {
	env := newTestApp(t)
	worker := createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)

	issuedEarlier := time.Now().Add(-5 * 24 * time.Hour)
	aging, _, err := security.NewTokenIssuer([]byte(testSecretKey)).
		WithClock(func() time.Time { return issuedEarlier }).
		IssueSession(worker.ID, string(worker.Role))
	require.NoError(t, err)

	response := gateRequest(t, env, "/admin", sessionCookieName+"="+aging)
	assert.Equal(t, http.StatusSeeOther, response.StatusCode)
	refreshed := responseCookie(response.Cookies(), sessionCookieName)
	require.NotNil(t, refreshed, "expected refreshed session cookie on redirect")
	assert.NotEqual(t, aging, refreshed.Value)
	assert.True(t, refreshed.HttpOnly)

	fresh := signIn(t, env.app, "worker@example.com", "workerpass")
	response = gateRequest(t, env, "/portal", fresh)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Nil(t, responseCookie(response.Cookies(), sessionCookieName))
}

func TestGateDecisionsAreCounted(t *testing.T) {
	env := newTestApp(t)

	gateRequest(t, env, "/admin", "")
	gateRequest(t, env, "/portal", "")
	gateRequest(t, env, "/", "")

	body := smokeGET(t, env.app, "", "/metrics", http.StatusOK)
	assert.Contains(t, body, `crewdesk_gate_decisions_total{action="login"} 2`)
	assert.Contains(t, body, `crewdesk_gate_decisions_total{action="pass"}`)
}

func TestGateHoldsForRouterPathVariants(t *testing.T) {
	env := newTestApp(t)
	createTestProfile(t, env, "admin@example.com", "adminpass", models.RoleAdmin)
	createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)
	adminCookie := signIn(t, env.app, "admin@example.com", "adminpass")
	workerCookie := signIn(t, env.app, "worker@example.com", "workerpass")

	cases := []struct {
		name     string
		path     string
		cookie   string
		location string
	}{
		{name: "anonymous upper admin", path: "/ADMIN/workers", location: "/login?redirect=%2FADMIN%2Fworkers"},
		{name: "anonymous mixed admin", path: "/Admin/leads", location: "/login?redirect=%2FAdmin%2Fleads"},
		{name: "anonymous trailing slash", path: "/admin/workers/", location: "/login?redirect=%2Fadmin%2Fworkers%2F"},
		{name: "anonymous mixed portal", path: "/Portal", location: "/login?redirect=%2FPortal"},
		{name: "worker upper admin", path: "/ADMIN/workers", cookie: workerCookie, location: "/portal"},
		{name: "worker inner doubled slash", path: "/admin//workers", cookie: workerCookie, location: "/portal"},
		{name: "admin mixed portal", path: "/Portal/schedule", cookie: adminCookie, location: "/admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response := gateRequest(t, env, tc.path, tc.cookie)
			assert.Equal(t, http.StatusSeeOther, response.StatusCode)
			assert.Equal(t, tc.location, response.Header.Get("Location"))
		})
	}

	// Variants an admin is allowed through must not alias a real route.
	for _, path := range []string{"/ADMIN/workers", "/admin/workers/"} {
		response := gateRequest(t, env, path, adminCookie)
		assert.Equal(t, http.StatusNotFound, response.StatusCode, path)
	}
}

func TestWorkerCannotPromoteThemselvesThroughPathVariants(t *testing.T) {
	env := newTestApp(t)
	worker := createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)
	workerCookie := signIn(t, env.app, "worker@example.com", "workerpass")

	for _, path := range []string{"/ADMIN/workers/" + worker.ID, "/Admin/workers/" + worker.ID} {
		response, _ := doJSON(t, env.app, http.MethodPut, path, workerCookie, map[string]any{"role": "admin"})
		assert.Equal(t, http.StatusSeeOther, response.StatusCode, path)
		assert.Equal(t, "/portal", response.Header.Get("Location"), path)
	}

	stored, found, err := env.repos.Profiles.FindByID(context.Background(), worker.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.RoleWorker, stored.Role)

	response := gateRequest(t, env, "/admin/workers", workerCookie)
	assert.Equal(t, http.StatusSeeOther, response.StatusCode)
	assert.Equal(t, "/portal", response.Header.Get("Location"))
}

func TestRoleGroupsBackTheGateForSkippedPaths(t *testing.T) {
	env := newTestApp(t)
	admin := createTestProfile(t, env, "admin@example.com", "adminpass", models.RoleAdmin)
	createTestProfile(t, env, "worker@example.com", "workerpass", models.RoleWorker)
	adminCookie := signIn(t, env.app, "admin@example.com", "adminpass")
	workerCookie := signIn(t, env.app, "worker@example.com", "workerpass")

	// An asset-looking id makes the gate step aside.
	response, _ := doJSON(t, env.app, http.MethodDelete, "/admin/workers/"+admin.ID+".png", "", nil)
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	response, raw := doJSON(t, env.app, http.MethodPut, "/admin/workers/"+admin.ID+".png", workerCookie, map[string]any{"role": "worker"})
	assert.Equal(t, http.StatusForbidden, response.StatusCode)
	assert.Contains(t, string(raw), "admin access required")

	board := fiber.New(AppConfig())
	board.Get("/jobs-board", env.handler.WorkerOnly, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	response, raw = doJSON(t, board, http.MethodGet, "/jobs-board", adminCookie, nil)
	assert.Equal(t, http.StatusForbidden, response.StatusCode)
	assert.Contains(t, string(raw), "worker access required")
	response, _ = doJSON(t, board, http.MethodGet, "/jobs-board", workerCookie, nil)
	assert.Equal(t, http.StatusNoContent, response.StatusCode)
}
