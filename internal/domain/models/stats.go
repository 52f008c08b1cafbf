package models

// DashboardStats is the role-scoped aggregate summary served by
// POST /predictions/dashboard. The scope reflects the caller's role:
// personal, organization, tenant, or system.
type DashboardStats struct {
	Scope              string         `json:"scope"`
	TotalCompanies     int            `json:"total_companies"`
	TotalPredictions   int            `json:"total_predictions"`
	AverageDefaultRate float64        `json:"average_default_rate"`
	HighRiskCount      int            `json:"high_risk_count"`
	SectorCounts       map[string]int `json:"sector_counts,omitempty"`
}
