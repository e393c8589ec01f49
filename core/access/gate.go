package access

import (
	"context"
	"strings"

	"github.com/ecoquest/ecoquest/core/session"
)

// Reason explains a redirect.
type Reason string

const (
	ReasonUnauthenticated Reason = "UNAUTHENTICATED"
	ReasonPendingApproval Reason = "PENDING_APPROVAL"
	ReasonForbidden       Reason = "FORBIDDEN"
)

const (
	PathAuth = "/auth"
	PathHome = "/"
)

type (
	// Requirement describes who may open a view.
	// An unprotected Requirement lets everyone through.
	Requirement struct {
		Protected bool
		AdminOnly bool           // only the distinguished admin identity
		Roles     []session.Role // exact match; empty means any role
	}

	// Decision is either an allow or a redirect to Target.
	Decision struct {
		Allowed bool   `json:"allowed"`
		Target  string `json:"redirect,omitempty"`
		Reason  Reason `json:"reason,omitempty"`
	}

	ApprovalChecker interface {
		IsApproved(ctx context.Context, email string) bool
	}

	Gate struct {
		approvals  ApprovalChecker
		adminEmail string
		views      map[string]Requirement
	}
)

var allow = Decision{Allowed: true}

func redirect(target string, reason Reason) Decision {
	return Decision{Target: target, Reason: reason}
}

// NewGate returns a Gate over the default Views.
func NewGate(approvals ApprovalChecker, adminEmail string) *Gate {
	return &Gate{
		approvals:  approvals,
		adminEmail: strings.ToLower(adminEmail),
		views:      Views(),
	}
}

func (g *Gate) AdminEmail() string { return g.adminEmail }

// IsAdminIdentity reports whether claims belong to the distinguished admin.
func (g *Gate) IsAdminIdentity(claims *session.Claims) bool {
	return claims != nil && g.adminEmail != "" && claims.Email == g.adminEmail
}

// Evaluate decides whether claims (nil when there's no session) satisfy req.
// Checks run in order: session, approval of gated roles, admin identity, role allow-list.
func (g *Gate) Evaluate(ctx context.Context, claims *session.Claims, req Requirement) Decision {
	if !req.Protected {
		return allow
	}
	if claims == nil {
		return redirect(PathAuth, ReasonUnauthenticated)
	}
	if claims.Role.IsGated() && !g.approvals.IsApproved(ctx, claims.Email) {
		return redirect(PathAuth, ReasonPendingApproval)
	}
	if req.AdminOnly && !g.IsAdminIdentity(claims) {
		return redirect(PathHome, ReasonForbidden)
	}
	if len(req.Roles) > 0 && !claims.HasRole(req.Roles...) {
		return redirect(PathHome, ReasonForbidden)
	}
	return allow
}

// Requirement returns the requirement of the view at path.
func (g *Gate) Requirement(path string) Requirement {
	return g.views[normalizePath(path)]
}

// Check evaluates the requirement of the view at path.
func (g *Gate) Check(ctx context.Context, claims *session.Claims, path string) Decision {
	return g.Evaluate(ctx, claims, g.Requirement(path))
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return strings.ToLower(path)
}
