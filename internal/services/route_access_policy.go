package services

import (
	"net/url"
	"path"
	"strings"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const (
	LoginPath        = "/login"
	SignupPath       = "/signup"
	AdminHomePath    = "/admin"
	PortalHomePath   = "/portal"
	AuthCallbackPath = "/api/auth/callback"
)

type RouteCategory int

const (
	RouteOther RouteCategory = iota
	RoutePublic
	RouteAuthPage
	RouteAdmin
	RoutePortal
)

type GateAction string

const (
	GatePass           GateAction = "pass"
	GateRedirectLogin  GateAction = "login"
	GateRedirectAdmin  GateAction = "admin"
	GateRedirectPortal GateAction = "portal"
)

// GateDecision is the outcome for one request. Location is empty for
// GatePass.
type GateDecision struct {
	Action   GateAction
	Location string
}

var gateSkippedExtensions = map[string]struct{}{
	".svg": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".ico": {},
}

// GateApplies excludes static assets and images from access control.
func GateApplies(requestPath string) bool {
	requestPath = canonicalRoutePath(requestPath)
	if strings.HasPrefix(requestPath, "/static/") || requestPath == "/favicon.ico" {
		return false
	}
	_, skipped := gateSkippedExtensions[strings.ToLower(path.Ext(requestPath))]
	return !skipped
}

// ClassifyRoute matches whole path segments, so /administrator is not an
// admin route. Categories are checked in precedence order. Case, doubled
// slashes and trailing slashes do not change the category.
func ClassifyRoute(requestPath string) RouteCategory {
	requestPath = canonicalRoutePath(requestPath)
	switch {
	case requestPath == "/" || hasPathPrefix(requestPath, AuthCallbackPath):
		return RoutePublic
	case hasPathPrefix(requestPath, LoginPath) || hasPathPrefix(requestPath, SignupPath):
		return RouteAuthPage
	case hasPathPrefix(requestPath, AdminHomePath):
		return RouteAdmin
	case hasPathPrefix(requestPath, PortalHomePath):
		return RoutePortal
	default:
		return RouteOther
	}
}

// NeedsIdentity reports whether the gate must resolve the caller for the
// category. Public and unlisted routes never trigger a lookup.
func (category RouteCategory) NeedsIdentity() bool {
	return category == RouteAuthPage || category == RouteAdmin || category == RoutePortal
}

// DecideRouteAccess is the gate truth table. role is only consulted when
// authenticated is true; callers map a failed role lookup to RoleWorker,
// never to RoleAdmin.
func DecideRouteAccess(requestPath string, authenticated bool, role models.Role) GateDecision {
	category := ClassifyRoute(requestPath)
	switch category {
	case RouteAuthPage:
		if !authenticated {
			return GateDecision{Action: GatePass}
		}
		return roleHomeDecision(role)
	case RouteAdmin, RoutePortal:
		if !authenticated {
			return GateDecision{Action: GateRedirectLogin, Location: LoginRedirectLocation(requestPath)}
		}
		isAdmin := role == models.RoleAdmin
		if category == RoutePortal && isAdmin {
			return GateDecision{Action: GateRedirectAdmin, Location: AdminHomePath}
		}
		if category == RouteAdmin && !isAdmin {
			return GateDecision{Action: GateRedirectPortal, Location: PortalHomePath}
		}
		return GateDecision{Action: GatePass}
	default:
		return GateDecision{Action: GatePass}
	}
}

// RoleHome is where a signed-in user lands by default.
func RoleHome(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminHomePath
	}
	return PortalHomePath
}

// LoginRedirectLocation carries the original path (no query string) so login
// can send the user back.
func LoginRedirectLocation(requestPath string) string {
	return LoginPath + "?" + url.Values{"redirect": {requestPath}}.Encode()
}

// SanitizeRedirectPath accepts only local absolute paths.
func SanitizeRedirectPath(raw string, fallback string) string {
	value := strings.TrimSpace(raw)
	if value == "" || !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") || strings.Contains(value, `\`) {
		return fallback
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return fallback
	}
	return value
}

func roleHomeDecision(role models.Role) GateDecision {
	if role == models.RoleAdmin {
		return GateDecision{Action: GateRedirectAdmin, Location: AdminHomePath}
	}
	return GateDecision{Action: GateRedirectPortal, Location: PortalHomePath}
}

func canonicalRoutePath(requestPath string) string {
	if requestPath == "" {
		return "/"
	}
	return strings.ToLower(path.Clean("/" + requestPath))
}

func hasPathPrefix(requestPath string, prefix string) bool {
	return requestPath == prefix || strings.HasPrefix(requestPath, prefix+"/")
}
