package session

import (
	"math"
	"strings"
	"time"
)

type Role string

// Roles
const (
	RoleStudent    Role = "STUDENT"
	RoleTeacher    Role = "TEACHER"
	RoleAmbassador Role = "AMBASSADOR"
	RoleAdmin      Role = "ADMIN"
)

var (
	AllRoles    = []Role{RoleStudent, RoleTeacher, RoleAmbassador, RoleAdmin}
	SignupRoles = []Role{RoleStudent, RoleTeacher, RoleAmbassador}
	// GatedRoles need an explicit admin approval before reaching protected views.
	GatedRoles = []Role{RoleTeacher, RoleAmbassador}
)

// ParseRole upper-cases and trims s. The result may be an unknown role.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

func (r Role) in(roles []Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) IsKnown() bool { return r.in(AllRoles) }
func (r Role) IsGated() bool { return r.in(GatedRoles) }

// Claims are the identity assertions carried by a session token.
type Claims struct {
	Email     string `json:"sub"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ExpiresAt *int64 `json:"exp,omitempty"` // epoch seconds
}

func (c Claims) HasRole(roles ...Role) bool {
	return c.Role.in(roles)
}

// DisplayName is "First Last" or "" when either part is missing.
func (c Claims) DisplayName() string {
	if c.FirstName == "" || c.LastName == "" {
		return ""
	}
	return c.FirstName + " " + c.LastName
}

// Expired reports whether the claims carry an expiry strictly before now.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && *c.ExpiresAt < now.Unix()
}

// ParseSession derives the session Claims from a token.
// Any shape mismatch (missing or non-string sub/role, non-string names, non-numeric exp)
// and any expired token yield no session.
func ParseSession(token string, now time.Time) (*Claims, bool) {
	payload, ok := DecodeClaims(token)
	if !ok {
		return nil, false
	}
	claims, ok := claimsFromPayload(payload)
	if !ok || claims.Expired(now) {
		return nil, false
	}
	return claims, true
}

func claimsFromPayload(p Payload) (*Claims, bool) {
	sub, ok := p["sub"].(string)
	if !ok || sub == "" {
		return nil, false
	}
	role, ok := p["role"].(string)
	if !ok || role == "" {
		return nil, false
	}
	claims := &Claims{Email: sub, Role: Role(role)}

	if claims.FirstName, ok = optionalString(p, "firstName"); !ok {
		return nil, false
	}
	if claims.LastName, ok = optionalString(p, "lastName"); !ok {
		return nil, false
	}

	if raw, present := p["exp"]; present && raw != nil {
		exp, isNum := raw.(float64)
		if !isNum || math.IsNaN(exp) || math.IsInf(exp, 0) {
			return nil, false
		}
		claims.ExpiresAt = expirySeconds(exp)
	}
	return claims, true
}

// expirySeconds floors exp, saturating at the int64 bounds.
func expirySeconds(exp float64) *int64 {
	var sec int64
	switch {
	case exp >= math.MaxInt64:
		sec = math.MaxInt64
	case exp <= math.MinInt64:
		sec = math.MinInt64
	default:
		sec = int64(math.Floor(exp))
	}
	return &sec
}

func optionalString(p Payload, key string) (string, bool) {
	raw, present := p[key]
	if !present || raw == nil {
		return "", true
	}
	s, ok := raw.(string)
	return s, ok
}
