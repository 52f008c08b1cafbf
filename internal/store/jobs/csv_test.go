package jobs

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accunode/accunode-go/internal/domain/models"
)

func TestWriteResultsCSVEscapesSpecialCharacters(t *testing.T) {
	rows := []models.JobResultRow{
		{
			StockSymbol:        "ACME",
			CompanyName:        `Acme "Holdings", Inc.`,
			Sector:             "Industrials",
			ReportingPeriod:    "2025",
			DefaultProbability: 0.0425,
			RiskLevel:          "medium",
		},
		{
			StockSymbol:        "NL",
			CompanyName:        "Line\nBreak Co",
			Sector:             "Tech",
			ReportingPeriod:    "2025-Q2",
			DefaultProbability: 0.9,
			RiskLevel:          "high",
			Error:              "missing ratio: total_debt_to_ebitda",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, rows))

	// Any conforming reader recovers the original values.
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, `Acme "Holdings", Inc.`, records[1][1])
	assert.Equal(t, "0.0425", records[1][4])
	assert.Equal(t, "Line\nBreak Co", records[2][1])
	assert.Equal(t, "missing ratio: total_debt_to_ebitda", records[2][6])
}

func TestWriteResultsCSVEmptyJobHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, nil))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1)
}
