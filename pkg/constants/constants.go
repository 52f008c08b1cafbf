// Package constants defines system-wide constants for the AccuNode client.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Role Constants
// ================================================================================

// Role represents a user's position in the platform role hierarchy.
type Role string

const (
	// RoleUser is the base role with personal-scope access only
	RoleUser Role = "user"

	// RoleOrgMember can read organization-scoped data
	RoleOrgMember Role = "org_member"

	// RoleOrgAdmin can manage users within an organization
	RoleOrgAdmin Role = "org_admin"

	// RoleTenantAdmin can manage organizations within a tenant
	RoleTenantAdmin Role = "tenant_admin"

	// RoleSuperAdmin has system-wide access; always scoped to system data
	RoleSuperAdmin Role = "super_admin"
)

// roleRank orders roles from least to most privileged.
// user < org_member < org_admin < tenant_admin < super_admin
var roleRank = map[Role]int{
	RoleUser:        0,
	RoleOrgMember:   1,
	RoleOrgAdmin:    2,
	RoleTenantAdmin: 3,
	RoleSuperAdmin:  4,
}

// AtLeast reports whether r sits at or above other in the role hierarchy.
// Unknown roles rank below every known role.
func (r Role) AtLeast(other Role) bool {
	ra, ok := roleRank[r]
	if !ok {
		return false
	}
	rb, ok := roleRank[other]
	if !ok {
		return true
	}
	return ra >= rb
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// ================================================================================
// Organization Access Constants
// ================================================================================

// OrganizationAccess is the provenance tag on a prediction indicating whether
// it is personal, organization-scoped, or system-wide.
type OrganizationAccess string

const (
	// AccessPersonal marks a prediction owned by the requesting user
	AccessPersonal OrganizationAccess = "personal"

	// AccessOrganization marks a prediction shared within an organization
	AccessOrganization OrganizationAccess = "organization"

	// AccessSystem marks a platform-wide prediction
	AccessSystem OrganizationAccess = "system"
)

// ================================================================================
// Data Filter Constants
// ================================================================================

// DataFilter selects which cached prediction partition a view displays.
type DataFilter string

const (
	// FilterPersonal shows only the user's own predictions
	FilterPersonal DataFilter = "personal"

	// FilterOrganization shows organization-scoped predictions
	FilterOrganization DataFilter = "organization"

	// FilterSystem shows the system-wide partition
	FilterSystem DataFilter = "system"

	// FilterAll shows every user-partition prediction regardless of provenance
	FilterAll DataFilter = "all"
)

// ================================================================================
// Prediction Type Constants
// ================================================================================

// PredictionType distinguishes annual from quarterly reporting periods.
type PredictionType string

const (
	// PredictionAnnual covers a full fiscal year
	PredictionAnnual PredictionType = "annual"

	// PredictionQuarterly covers a single fiscal quarter
	PredictionQuarterly PredictionType = "quarterly"
)

// ================================================================================
// Job Status Constants
// ================================================================================

// JobStatus represents the lifecycle state of a bulk-upload job.
// Transitions are strictly monotonic: pending -> processing -> completed|failed.
type JobStatus string

const (
	// JobStatusPending indicates the job is queued server-side
	JobStatusPending JobStatus = "pending"

	// JobStatusProcessing indicates rows are being scored
	JobStatusProcessing JobStatus = "processing"

	// JobStatusCompleted is a terminal success state
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed is a terminal failure state
	JobStatusFailed JobStatus = "failed"
)

// jobStatusRank orders job states for monotonicity checks.
var jobStatusRank = map[JobStatus]int{
	JobStatusPending:    0,
	JobStatusProcessing: 1,
	JobStatusCompleted:  2,
	JobStatusFailed:     2,
}

// Terminal reports whether s is a terminal job state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether moving from s to next respects the
// monotonic job state machine. Terminal states accept no transition.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	a, ok := jobStatusRank[s]
	if !ok {
		return false
	}
	b, ok := jobStatusRank[next]
	if !ok {
		return false
	}
	return b > a
}

// ================================================================================
// Auth Timing Constants
// ================================================================================

const (
	// RefreshBuffer is how long before access-token expiry a proactive
	// refresh is attempted (2 minutes)
	RefreshBuffer = 2 * time.Minute

	// ProfileStaleness is the staleness window for the cached user profile
	// (5 minutes)
	ProfileStaleness = 5 * time.Minute
)

// ================================================================================
// Cache Window Constants
// ================================================================================

const (
	// PredictionsCacheWindow is how long fetched prediction partitions stay
	// fresh before a non-forced fetch refetches them (10 minutes)
	PredictionsCacheWindow = 10 * time.Minute

	// DashboardStatsTTL is the cache lifetime for dashboard aggregates
	// (2 minutes)
	DashboardStatsTTL = 2 * time.Minute
)

// ================================================================================
// Job Polling Constants
// ================================================================================

const (
	// PollEstimateInitialDivisor derives the first-poll delay from the
	// server's completion estimate (estimate / 3)
	PollEstimateInitialDivisor = 3

	// PollEstimateIntervalDivisor derives the steady poll interval from the
	// server's completion estimate (estimate / 4)
	PollEstimateIntervalDivisor = 4

	// PollMinInitialDelay is the floor for the first-poll delay (5s)
	PollMinInitialDelay = 5 * time.Second

	// PollMinInterval is the floor for the steady poll interval (10s)
	PollMinInterval = 10 * time.Second

	// PollSmallJobInterval applies to jobs under SmallJobRows rows (5s)
	PollSmallJobInterval = 5 * time.Second

	// PollMediumJobInterval applies to jobs under MediumJobRows rows (15s)
	PollMediumJobInterval = 15 * time.Second

	// PollLargeJobInterval applies to everything larger (5 minutes)
	PollLargeJobInterval = 300 * time.Second

	// SmallJobRows is the row-count ceiling for the small-job interval
	SmallJobRows = 20

	// MediumJobRows is the row-count ceiling for the medium-job interval
	MediumJobRows = 1000
)

// ================================================================================
// HTTP Constants
// ================================================================================

const (
	// APIBasePath is the versioned base path of the platform REST API
	APIBasePath = "/api/v1"

	// HeaderRequestID carries the client-generated request id
	HeaderRequestID = "X-Request-ID"

	// DefaultHTTPTimeout bounds every platform API call (30s)
	DefaultHTTPTimeout = 30 * time.Second
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is a private type for context values set by this module.
type ContextKey string

const (
	// ContextKeyRequestID carries the request id through a call chain
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyUserID carries the authenticated user's id
	ContextKeyUserID ContextKey = "user_id"
)

// ================================================================================
// Event Topics
// ================================================================================

const (
	// EventAuthLogout is published when the session is cleared; dependent
	// stores reset on it
	EventAuthLogout = "auth.logout"

	// EventSessionExpired is published when a refresh fails after a 401;
	// the only fatal client path
	EventSessionExpired = "session.expired"

	// EventPredictionsChanged is published after any prediction mutation;
	// the stats store invalidates on it
	EventPredictionsChanged = "predictions.changed"
)
