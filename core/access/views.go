package access

import "github.com/ecoquest/ecoquest/core/session"

// Views
const (
	ViewDashboard           = "/dashboard"
	ViewProfile             = "/profile"
	ViewStudentDashboard    = "/student-dashboard"
	ViewTeacherPortal       = "/teacher-portal"
	ViewAmbassadorDashboard = "/ambassador-dashboard"
	ViewAdminUsers          = "/admin/users"
	ViewAdminDashboard      = "/admin/dashboard"
)

// Views returns the protected views. Any other path is public.
func Views() map[string]Requirement {
	anyRole := Requirement{Protected: true, Roles: []session.Role{
		session.RoleStudent, session.RoleAdmin, session.RoleTeacher, session.RoleAmbassador,
	}}
	adminOnly := Requirement{Protected: true, AdminOnly: true}

	return map[string]Requirement{
		ViewDashboard:           anyRole,
		ViewProfile:             anyRole,
		ViewStudentDashboard:    {Protected: true, Roles: []session.Role{session.RoleStudent}},
		ViewTeacherPortal:       {Protected: true, Roles: []session.Role{session.RoleTeacher}},
		ViewAmbassadorDashboard: {Protected: true, Roles: []session.Role{session.RoleAmbassador}},
		ViewAdminUsers:          {Protected: true, Roles: []session.Role{session.RoleAdmin}},
		ViewAdminDashboard:      adminOnly,
		"/admin-dashboard":      adminOnly,
		"/admindashboard":       adminOnly,
	}
}
