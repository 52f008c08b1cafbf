package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accunode/accunode-go/internal/api"
	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

// countingCreator records calls; it stands in for the predictions API.
type countingCreator struct {
	creates int
	updates int
}

func (c *countingCreator) Create(ctx context.Context, typ constants.PredictionType, req api.CreatePredictionRequest) (*models.Prediction, error) {
	c.creates++
	return &models.Prediction{ID: "new", StockSymbol: req.StockSymbol, Type: typ,
		OrganizationAccess: req.OrganizationAccess}, nil
}

func (c *countingCreator) Update(ctx context.Context, typ constants.PredictionType, id string, req api.CreatePredictionRequest) (*models.Prediction, error) {
	c.updates++
	return &models.Prediction{ID: id, StockSymbol: req.StockSymbol, Type: typ}, nil
}

func validForm() *PredictionForm {
	return &PredictionForm{
		StockSymbol:                "acme",
		CompanyName:                "Acme Inc",
		Sector:                     "Industrials",
		MarketCap:                  "1234.5",
		ReportingYear:              "2025",
		LongTermDebtToTotalCapital: "35.2",
		TotalDebtToEBITDA:          "2.1",
		NetIncomeMargin:            "8.4",
		EBITToInterestExpense:      "5.0",
		ReturnOnAssets:             "6.3",
		SGAMargin:                  "12.0",
	}
}

func TestValidateBuildsRequest(t *testing.T) {
	req, verr := validForm().Validate(constants.PredictionAnnual)
	require.Nil(t, verr)
	assert.Equal(t, "ACME", req.StockSymbol, "symbol is upper-cased")
	assert.Equal(t, 2025, req.ReportingYear)
	assert.Equal(t, constants.AccessPersonal, req.OrganizationAccess, "access defaults to personal")
	assert.Equal(t, 35.2, req.Ratios.LongTermDebtToTotalCapital)
}

func TestValidateRequiredFields(t *testing.T) {
	form := &PredictionForm{}
	_, verr := form.Validate(constants.PredictionAnnual)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "stock_symbol")
	assert.Contains(t, verr.Fields, "company_name")
	assert.Contains(t, verr.Fields, "reporting_year")
}

func TestValidateQuarterOnlyForQuarterly(t *testing.T) {
	form := validForm()
	_, verr := form.Validate(constants.PredictionQuarterly)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "reporting_quarter")

	form.ReportingQuarter = "q3"
	req, verr := form.Validate(constants.PredictionQuarterly)
	require.Nil(t, verr)
	assert.Equal(t, "Q3", req.ReportingQuarter)

	form.ReportingQuarter = "Q5"
	_, verr = form.Validate(constants.PredictionQuarterly)
	require.NotNil(t, verr)
}

func TestValidateRejectsGarbageNumbers(t *testing.T) {
	form := validForm()
	form.ReturnOnAssets = "six percent"
	_, verr := form.Validate(constants.PredictionAnnual)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Fields, "return_on_assets")
}

func TestAnalyzeBlocksInvalidFormsLocally(t *testing.T) {
	creator := &countingCreator{}
	analyzer := NewAnalyzer(creator, nil)

	form := validForm()
	form.StockSymbol = ""
	_, err := analyzer.Analyze(context.Background(), constants.PredictionAnnual, form)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Zero(t, creator.creates, "validation failure must not reach the network")
}

func TestAnalyzeSubmitsValidForm(t *testing.T) {
	creator := &countingCreator{}
	analyzer := NewAnalyzer(creator, nil)

	pred, err := analyzer.Analyze(context.Background(), constants.PredictionAnnual, validForm())
	require.NoError(t, err)
	assert.Equal(t, 1, creator.creates)
	assert.Equal(t, "ACME", pred.StockSymbol)
}

func TestReanalyzeUpdatesExistingRecord(t *testing.T) {
	creator := &countingCreator{}
	analyzer := NewAnalyzer(creator, nil)

	pred, err := analyzer.Reanalyze(context.Background(), constants.PredictionAnnual, "p42", validForm())
	require.NoError(t, err)
	assert.Equal(t, 1, creator.updates)
	assert.Equal(t, "p42", pred.ID)
}
