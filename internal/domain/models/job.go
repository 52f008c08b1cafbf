package models

import (
	"time"

	"github.com/accunode/accunode-go/pkg/constants"
)

// JobResultRow is one scored row from a completed bulk-upload job.
type JobResultRow struct {
	StockSymbol        string  `json:"stock_symbol"`
	CompanyName        string  `json:"company_name"`
	Sector             string  `json:"sector"`
	ReportingPeriod    string  `json:"reporting_period"`
	DefaultProbability float64 `json:"probability"`
	RiskLevel          string  `json:"risk_level"`
	Error              string  `json:"error,omitempty"`
}

// Job tracks one asynchronous bulk-upload task client-side. Created as soon
// as the upload call returns a server-issued job id; advanced by polling;
// held in memory only (not persisted across restarts).
type Job struct {
	ID               string                   `json:"job_id"`
	FileName         string                   `json:"file_name"`
	Type             constants.PredictionType `json:"prediction_type"`
	Status           constants.JobStatus      `json:"status"`
	Progress         float64                  `json:"progress"`
	TotalRows        int                      `json:"total_rows"`
	ProcessedRows    int                      `json:"processed_rows"`
	FailedRows       int                      `json:"failed_rows"`
	EstimatedMinutes float64                  `json:"estimated_time_minutes"`
	Message          string                   `json:"message,omitempty"`
	Results          []JobResultRow           `json:"results,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// Terminal reports whether the job has reached completed or failed.
func (j *Job) Terminal() bool {
	return j.Status.Terminal()
}

// EstimatedDuration returns the server-supplied completion estimate, or zero
// when the server gave none.
func (j *Job) EstimatedDuration() time.Duration {
	if j.EstimatedMinutes <= 0 {
		return 0
	}
	return time.Duration(j.EstimatedMinutes * float64(time.Minute))
}
