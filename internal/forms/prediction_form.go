// Package forms performs the client-side validation that precedes any
// network call. Required-field and numeric checks block submission locally;
// the create-prediction endpoint is only reached with a fully valid request.
package forms

import (
	"strconv"
	"strings"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

// PredictionForm carries the raw string inputs of the single-company
// analysis form. Everything is a string until Validate parses it, matching
// how the values arrive from flags or form fields.
type PredictionForm struct {
	StockSymbol      string
	CompanyName      string
	Sector           string
	MarketCap        string
	ReportingYear    string
	ReportingQuarter string

	LongTermDebtToTotalCapital string
	TotalDebtToEBITDA          string
	NetIncomeMargin            string
	EBITToInterestExpense      string
	ReturnOnAssets             string
	SGAMargin                  string

	OrganizationAccess string
}

// Validate checks required fields and parses numerics. On failure it returns
// a validation error keyed by field name and no request is built.
func (f *PredictionForm) Validate(typ constants.PredictionType) (*api.CreatePredictionRequest, *errors.AppError) {
	verr := &errors.AppError{Kind: errors.KindValidation, Message: "validation failed"}

	symbol := strings.ToUpper(strings.TrimSpace(f.StockSymbol))
	if symbol == "" {
		verr.WithField("stock_symbol", "required")
	}
	name := strings.TrimSpace(f.CompanyName)
	if name == "" {
		verr.WithField("company_name", "required")
	}

	year := 0
	if strings.TrimSpace(f.ReportingYear) == "" {
		verr.WithField("reporting_year", "required")
	} else {
		var err error
		year, err = strconv.Atoi(strings.TrimSpace(f.ReportingYear))
		if err != nil || year < 1900 || year > 2100 {
			verr.WithField("reporting_year", "must be a four-digit year")
		}
	}

	quarter := strings.ToUpper(strings.TrimSpace(f.ReportingQuarter))
	if typ == constants.PredictionQuarterly {
		switch quarter {
		case "Q1", "Q2", "Q3", "Q4":
		case "":
			verr.WithField("reporting_quarter", "required")
		default:
			verr.WithField("reporting_quarter", "must be Q1, Q2, Q3, or Q4")
		}
	}

	marketCap := parseRatio(f.MarketCap, "market_cap", verr)
	if marketCap < 0 {
		verr.WithField("market_cap", "must not be negative")
	}

	ratios := models.FinancialRatios{
		LongTermDebtToTotalCapital: parseRatio(f.LongTermDebtToTotalCapital, "long_term_debt_to_total_capital", verr),
		TotalDebtToEBITDA:          parseRatio(f.TotalDebtToEBITDA, "total_debt_to_ebitda", verr),
		NetIncomeMargin:            parseRatio(f.NetIncomeMargin, "net_income_margin", verr),
		EBITToInterestExpense:      parseRatio(f.EBITToInterestExpense, "ebit_to_interest_expense", verr),
		ReturnOnAssets:             parseRatio(f.ReturnOnAssets, "return_on_assets", verr),
		SGAMargin:                  parseRatio(f.SGAMargin, "sga_margin", verr),
	}

	access := constants.OrganizationAccess(strings.TrimSpace(f.OrganizationAccess))
	if access == "" {
		access = constants.AccessPersonal
	}
	switch access {
	case constants.AccessPersonal, constants.AccessOrganization, constants.AccessSystem:
	default:
		verr.WithField("organization_access", "must be personal, organization, or system")
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	return &api.CreatePredictionRequest{
		StockSymbol:        symbol,
		CompanyName:        name,
		Sector:             strings.TrimSpace(f.Sector),
		MarketCap:          marketCap,
		ReportingYear:      year,
		ReportingQuarter:   quarter,
		Ratios:             ratios,
		OrganizationAccess: access,
	}, nil
}

// parseRatio parses an optional numeric field; empty means zero, garbage is
// a field error.
func parseRatio(raw, field string, verr *errors.AppError) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		verr.WithField(field, "must be a number")
		return 0
	}
	return v
}
