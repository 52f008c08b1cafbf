package jobs

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/pkg/errors"
)

// csvHeader is the column order of an exported result file.
var csvHeader = []string{
	"stock_symbol",
	"company_name",
	"sector",
	"reporting_period",
	"default_probability",
	"risk_level",
	"error",
}

// WriteResultsCSV serializes a job's result rows to w. Field values
// containing commas, quotes, or newlines are quote-escaped per RFC 4180 by
// encoding/csv, so a round-trip through any conforming parser recovers the
// original strings. Formatting happens entirely client-side; there is no
// server round-trip.
func WriteResultsCSV(w io.Writer, rows []models.JobResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.StockSymbol,
			row.CompanyName,
			row.Sector,
			row.ReportingPeriod,
			strconv.FormatFloat(row.DefaultProbability, 'f', -1, 64),
			row.RiskLevel,
			row.Error,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DownloadResults writes a tracked job's results to a CSV file at path.
func (s *Store) DownloadResults(id, path string) error {
	job, ok := s.Job(id)
	if !ok {
		return errors.NewValidationError("job_id", "unknown job: "+id)
	}
	if len(job.Results) == 0 {
		return errors.NewValidationError("job_id", "job has no results to download")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteResultsCSV(f, job.Results)
}
