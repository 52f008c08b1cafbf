package models

import (
	"strconv"
	"time"

	"github.com/accunode/accunode-go/pkg/constants"
)

// FinancialRatios is the model-input ratio set submitted with a prediction
// request. The quarterly model uses a subset; unused fields stay zero.
type FinancialRatios struct {
	LongTermDebtToTotalCapital float64 `json:"long_term_debt_to_total_capital"`
	TotalDebtToEBITDA          float64 `json:"total_debt_to_ebitda"`
	NetIncomeMargin            float64 `json:"net_income_margin"`
	EBITToInterestExpense      float64 `json:"ebit_to_interest_expense"`
	ReturnOnAssets             float64 `json:"return_on_assets"`
	SGAMargin                  float64 `json:"sga_margin,omitempty"`
}

// Prediction is a model-scored default-risk record for one company and
// reporting period. The client treats it as immutable by id once fetched;
// edits replace the record wholesale.
type Prediction struct {
	ID                 string                       `json:"id"`
	CompanyID          string                       `json:"company_id"`
	StockSymbol        string                       `json:"stock_symbol"`
	CompanyName        string                       `json:"company_name"`
	Sector             string                       `json:"sector"`
	MarketCap          float64                      `json:"market_cap"`
	Type               constants.PredictionType     `json:"prediction_type"`
	ReportingYear      int                          `json:"reporting_year"`
	ReportingQuarter   string                       `json:"reporting_quarter,omitempty"`
	Ratios             FinancialRatios              `json:"financial_ratios"`
	DefaultProbability float64                      `json:"probability"`
	RiskLevel          string                       `json:"risk_level"`
	ConfidenceScore    float64                      `json:"confidence,omitempty"`
	OrganizationAccess constants.OrganizationAccess `json:"organization_access"`
	OrganizationID     string                       `json:"organization_id,omitempty"`
	CreatedBy          string                       `json:"created_by,omitempty"`
	CreatedAt          time.Time                    `json:"created_at"`
	UpdatedAt          time.Time                    `json:"updated_at"`
}

// IsSystem reports whether the prediction belongs to the system-wide
// partition. Everything else lives in the user partition.
func (p *Prediction) IsSystem() bool {
	return p.OrganizationAccess == constants.AccessSystem
}

// Period renders the reporting period for display and sorting,
// e.g. "2025" or "2025-Q3".
func (p *Prediction) Period() string {
	if p.Type == constants.PredictionQuarterly && p.ReportingQuarter != "" {
		return strconv.Itoa(p.ReportingYear) + "-" + p.ReportingQuarter
	}
	return strconv.Itoa(p.ReportingYear)
}

// HighRisk reports whether the scored probability crosses the dashboard's
// high-risk threshold.
func (p *Prediction) HighRisk() bool {
	return p.DefaultProbability >= 0.07
}
