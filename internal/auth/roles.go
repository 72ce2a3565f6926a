package auth

import (
	"strings"
	"time"
)

// Role is the access level of a console user.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleOperator Role = "Operator"
	RoleViewer   Role = "Viewer"
)

// NormalizeRole parses a role string case-insensitively.
func NormalizeRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "operator":
		return RoleOperator, true
	case "viewer":
		return RoleViewer, true
	}
	return "", false
}

// CanOperate reports whether the role may trigger mutating operations.
func (r Role) CanOperate() bool {
	return r == RoleAdmin || r == RoleOperator
}

// IsViewer reports whether the role is read-only.
func (r Role) IsViewer() bool {
	return r == RoleViewer
}

// Session is the single-tab console session created at login.
type Session struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Token      string    `json:"token"`
	LoggedInAt time.Time `json:"logged_in_at"`
}
