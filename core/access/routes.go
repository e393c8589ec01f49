package access

import (
	"strings"

	"github.com/ecoquest/ecoquest/core/session"
)

// NavItem is one entry of a navigation menu.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

func upper(role session.Role) session.Role {
	return session.Role(strings.ToUpper(string(role)))
}

// LandingRoute picks the default destination of a signed in user.
func LandingRoute(role session.Role, email, adminEmail string) string {
	switch upper(role) {
	case session.RoleStudent:
		return ViewStudentDashboard
	case session.RoleTeacher:
		return ViewTeacherPortal
	case session.RoleAmbassador:
		return ViewAmbassadorDashboard
	case session.RoleAdmin:
		if adminEmail != "" && email == adminEmail {
			return ViewAdminDashboard
		}
		return ViewAdminUsers
	default:
		return ViewDashboard
	}
}

// LandingFor is LandingRoute for optional claims; no session lands on the auth page.
func (g *Gate) LandingFor(claims *session.Claims) string {
	if claims == nil {
		return PathAuth
	}
	return LandingRoute(claims.Role, claims.Email, g.adminEmail)
}

// Navigation returns the menu of claims. No session, no menu.
func (g *Gate) Navigation(claims *session.Claims) []NavItem {
	if claims == nil {
		return []NavItem{}
	}

	nav := []NavItem{
		{Label: "Dashboard", Path: g.LandingFor(claims)},
		{Label: "Profile", Path: ViewProfile},
	}
	switch upper(claims.Role) {
	case session.RoleStudent:
		nav = append(nav,
			NavItem{Label: "Lessons", Path: "/lessons"},
			NavItem{Label: "Challenges", Path: "/challenges"},
			NavItem{Label: "Leaderboard", Path: "/student-journey/compete"},
		)
	case session.RoleTeacher:
		nav = append(nav,
			NavItem{Label: "Students", Path: ViewTeacherPortal + "?tab=students"},
			NavItem{Label: "Lessons", Path: ViewTeacherPortal + "?tab=lessons"},
			NavItem{Label: "Analytics", Path: ViewTeacherPortal + "?tab=overview"},
		)
	case session.RoleAmbassador:
		nav = append(nav,
			NavItem{Label: "Campaigns", Path: ViewAmbassadorDashboard + "?tab=campaigns"},
			NavItem{Label: "Communities", Path: ViewAmbassadorDashboard + "?tab=communities"},
			NavItem{Label: "Events", Path: ViewAmbassadorDashboard + "?tab=events"},
		)
	case session.RoleAdmin:
		nav = append(nav, NavItem{Label: "User Management", Path: ViewAdminUsers})
		if g.IsAdminIdentity(claims) {
			nav = append(nav, NavItem{Label: "Admin Dashboard", Path: ViewAdminDashboard})
		}
	}
	return nav
}

// HasDashboardAccess reports whether claims may open the dashboard of required.
// "ADMIN_DASHBOARD" is reserved to the admin identity.
func (g *Gate) HasDashboardAccess(claims *session.Claims, required string) bool {
	if claims == nil {
		return false
	}
	if required == "ADMIN_DASHBOARD" {
		return g.IsAdminIdentity(claims)
	}
	return upper(claims.Role) == session.ParseRole(required)
}

func RoleDisplayName(role session.Role) string {
	switch upper(role) {
	case session.RoleStudent:
		return "Student"
	case session.RoleTeacher:
		return "Teacher"
	case session.RoleAmbassador:
		return "Ambassador"
	case session.RoleAdmin:
		return "Administrator"
	default:
		return "User"
	}
}
