package models

import (
	"time"

	"github.com/accunode/accunode-go/pkg/constants"
)

// User is the authenticated user's profile as served by /users/me.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	FullName         string         `json:"full_name"`
	Role             constants.Role `json:"role"`
	OrganizationID   string         `json:"organization_id,omitempty"`
	OrganizationName string         `json:"organization_name,omitempty"`
	TenantID         string         `json:"tenant_id,omitempty"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
}

// IsSuperAdmin reports whether the user holds the system-wide role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == constants.RoleSuperAdmin
}

// Session is the persisted auth session: tokens, expiry, and the profile
// snapshot. This is the Go equivalent of the browser's auth-storage entry.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

// Valid reports whether the session carries both tokens.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// ExpiresWithin reports whether the access token expires inside the given
// window. Drives the proactive-refresh decision.
func (s *Session) ExpiresWithin(window time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return true
	}
	return time.Until(s.ExpiresAt) < window
}
