package models

import "time"

// Organization is a tenant-scoped group of users sharing predictions.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TenantID    string    `json:"tenant_id"`
	JoinToken   string    `json:"join_token,omitempty"`
	MemberCount int       `json:"member_count"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tenant is the top-level multi-tenancy unit; tenant admins manage the
// organizations beneath it.
type Tenant struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Domain            string    `json:"domain,omitempty"`
	OrganizationCount int       `json:"organization_count"`
	UserCount         int       `json:"user_count"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}
