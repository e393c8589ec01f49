package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoquest/ecoquest/core/approval"
	"github.com/ecoquest/ecoquest/core/session"
	inmemdb "github.com/ecoquest/ecoquest/storage/database/inmem"
)

const adminEmail = "admin@ecoquest.local"

type approvalsMock map[string]bool

func (m approvalsMock) IsApproved(_ context.Context, email string) bool { return m[email] }

func claims(email string, role session.Role) *session.Claims {
	return &session.Claims{Email: email, Role: role}
}

func TestGate_Evaluate(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(approvalsMock{"ok-teacher@example.com": true, "ok-amb@example.com": true}, adminEmail)

	teachers := Requirement{Protected: true, Roles: []session.Role{session.RoleTeacher}}
	adminOnly := Requirement{Protected: true, AdminOnly: true}
	anyone := Requirement{Protected: true}

	tests := []struct {
		name   string
		claims *session.Claims
		req    Requirement
		want   Decision
	}{
		{name: "public without session", req: Requirement{}, want: allow},
		{name: "public for pending teacher", claims: claims("t@example.com", session.RoleTeacher), req: Requirement{Roles: []session.Role{session.RoleAdmin}}, want: allow},
		{name: "no session", req: anyone, want: redirect("/auth", ReasonUnauthenticated)},
		{name: "pending teacher", claims: claims("t@example.com", session.RoleTeacher), req: teachers, want: redirect("/auth", ReasonPendingApproval)},
		{name: "pending ambassador", claims: claims("a@example.com", session.RoleAmbassador), req: anyone, want: redirect("/auth", ReasonPendingApproval)},
		{name: "approved teacher", claims: claims("ok-teacher@example.com", session.RoleTeacher), req: teachers, want: allow},
		{name: "approval checked before roles", claims: claims("t@example.com", session.RoleTeacher), req: adminOnly, want: redirect("/auth", ReasonPendingApproval)},
		{name: "student needs no approval", claims: claims("s@example.com", session.RoleStudent), req: anyone, want: allow},
		{name: "admin needs no approval", claims: claims("x@example.com", session.RoleAdmin), req: anyone, want: allow},
		{name: "admin only, other admin", claims: claims("x@example.com", session.RoleAdmin), req: adminOnly, want: redirect("/", ReasonForbidden)},
		{name: "admin only, admin identity", claims: claims(adminEmail, session.RoleAdmin), req: adminOnly, want: allow},
		{name: "admin only ignores role", claims: claims(adminEmail, session.RoleStudent), req: adminOnly, want: allow},
		{name: "wrong role", claims: claims("s@example.com", session.RoleStudent), req: teachers, want: redirect("/", ReasonForbidden)},
		{name: "role compared exactly", claims: claims("ok-teacher@example.com", "teacher"), req: teachers, want: redirect("/", ReasonForbidden)},
		{name: "unknown role", claims: claims("p@example.com", "PARENT"), req: anyone, want: allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Evaluate(ctx, tt.claims, tt.req))
		})
	}
}

func TestGate_Check(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(approvalsMock{}, adminEmail)

	student := claims("s@example.com", session.RoleStudent)
	admin := claims("x@example.com", session.RoleAdmin)

	tests := []struct {
		name   string
		claims *session.Claims
		path   string
		want   Decision
	}{
		{name: "public page", path: "/lessons", want: allow},
		{name: "unknown page", path: "/nope", want: allow},
		{name: "dashboard", claims: student, path: "/dashboard", want: allow},
		{name: "dashboard no session", path: "/dashboard", want: redirect("/auth", ReasonUnauthenticated)},
		{name: "trailing slash and query", claims: student, path: "/student-dashboard/?tab=1", want: allow},
		{name: "case insensitive path", path: "/Profile", want: redirect("/auth", ReasonUnauthenticated)},
		{name: "student on teacher portal", claims: student, path: "/teacher-portal", want: redirect("/", ReasonForbidden)},
		{name: "admin users", claims: admin, path: "/admin/users", want: allow},
		{name: "admin dashboard other admin", claims: admin, path: "/admin/dashboard", want: redirect("/", ReasonForbidden)},
		{name: "admin dashboard alias", claims: claims(adminEmail, session.RoleAdmin), path: "/admindashboard", want: allow},
		{name: "admin-dashboard alias", claims: admin, path: "/admin-dashboard", want: redirect("/", ReasonForbidden)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Check(ctx, tt.claims, tt.path))
		})
	}
}

// signup as a teacher, get blocked, get approved, get in.
func TestGate_ApprovalScenario(t *testing.T) {
	ctx := context.Background()
	reg := approval.NewRegistry(inmemdb.Open(), nil, nil)
	gate := NewGate(reg, adminEmail)
	teacher := claims("t@example.com", session.RoleTeacher)

	require.NoError(t, reg.RequestApproval(ctx, "t@example.com", session.RoleTeacher))
	assert.False(t, reg.IsApproved(ctx, "t@example.com"))
	_, pending := reg.Pending(ctx, "t@example.com")
	assert.True(t, pending)
	assert.Equal(t, redirect("/auth", ReasonPendingApproval), gate.Check(ctx, teacher, ViewTeacherPortal))

	require.NoError(t, reg.Approve(ctx, "t@example.com"))
	_, pending = reg.Pending(ctx, "t@example.com")
	assert.False(t, pending)
	assert.True(t, reg.IsApproved(ctx, "t@example.com"))
	assert.Equal(t, allow, gate.Check(ctx, teacher, ViewTeacherPortal))
	assert.Equal(t, allow, gate.Check(ctx, teacher, ViewDashboard))
	assert.Equal(t, redirect("/", ReasonForbidden), gate.Check(ctx, teacher, ViewStudentDashboard))
}
