package identity

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("identity not found")

// Role is a user's single role within the platform.
type Role string

const (
	RoleGuardian = Role("guardian")
	RoleTeacher  = Role("teacher")
	RoleAdmin    = Role("admin")
)

var AllRoles = []Role{RoleGuardian, RoleTeacher, RoleAdmin}

func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// LandingPath is the role's own landing page, used as the redirect target
// for authorization failures so a wrong-role visit never loops or 500s.
func (r Role) LandingPath() string {
	switch r {
	case RoleTeacher:
		return "/teacher"
	case RoleAdmin:
		return "/admin"
	default:
		return "/guardian"
	}
}

// Identity is the resolved caller: who they are and what they may see.
// It is derived per request from the session, never stored by this layer.
type Identity struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Role        Role     `json:"role"`
	Suspended   bool     `json:"suspended"`
	Subjects    []string `json:"subjects,omitempty"`
	Grades      []string `json:"grades,omitempty"`
}

// TeacherSetupComplete reports whether a teacher finished onboarding:
// at least one subject, at least one grade, and a display name.
func (id Identity) TeacherSetupComplete() bool {
	return len(id.Subjects) > 0 && len(id.Grades) > 0 && id.DisplayName != ""
}

type (
	// Repository reads identities under the caller's own row-level
	// visibility. It never mutates.
	Repository interface {
		GetIdentity(ctx context.Context, userID string) (Identity, error)
	}

	// AdminDirectory is the admin-bypass capability: it ignores per-row
	// access policies and may suspend or reinstate any account. Kept as a
	// distinct type from Repository so the bypass boundary stays explicit
	// and auditable. Server-side privileged handlers only.
	AdminDirectory interface {
		SuspendUser(ctx context.Context, userID string) error
		ReinstateUser(ctx context.Context, userID string) error
	}
)
