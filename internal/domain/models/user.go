// internal/domain/models/user.go
package models

import (
	"strings"
	"time"
)

// Role is a role granted to a user by the backend.
type Role string

const (
	RoleHR       Role = "HR"
	RoleEmployee Role = "Employee"
)

// ParseRole normalizes a role string from the backend or the session cookie.
// Unknown values return ("", false).
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hr", "role_hr":
		return RoleHR, true
	case "employee", "role_employee":
		return RoleEmployee, true
	}
	return "", false
}

// ParseRoles parses every recognizable role in ss, dropping unknown values
// and duplicates.
func ParseRoles(ss []string) []Role {
	out := make([]Role, 0, len(ss))
	seen := make(map[Role]bool, len(ss))
	for _, s := range ss {
		r, ok := ParseRole(s)
		if !ok || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// EffectiveRole returns the single role used for authorization decisions.
// HR takes precedence; every other user is treated as an Employee.
func EffectiveRole(roles []Role) Role {
	for _, r := range roles {
		if r == RoleHR {
			return RoleHR
		}
	}
	return RoleEmployee
}

// User is the account record returned by the backend profile endpoint.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// Identity is the signed-in principal as issued by a successful login.
type Identity struct {
	UserID   string
	Username string
	Email    string
	Roles    []Role
	Token    string
	Expiry   time.Time // zero means the backend did not say
}

// EffectiveRole returns the identity's effective role.
func (id Identity) EffectiveRole() Role {
	return EffectiveRole(id.Roles)
}

// Expired reports whether the credential is past its expiry at now.
func (id Identity) Expired(now time.Time) bool {
	return !id.Expiry.IsZero() && !now.Before(id.Expiry)
}
