package api

import (
	"context"
	"io"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
	"github.com/accunode/accunode-go/pkg/constants"
)

// PredictionsService maps the /predictions endpoints for both the annual and
// quarterly variants. The prediction type selects the path segment.
type PredictionsService struct {
	client *transport.Client
}

func NewPredictionsService(client *transport.Client) *PredictionsService {
	return &PredictionsService{client: client}
}

// PredictionList is the prediction collection response.
type PredictionList struct {
	Items []models.Prediction `json:"items"`
	Total int                 `json:"total"`
}

// CreatePredictionRequest is the single-company scoring request built from a
// validated form.
type CreatePredictionRequest struct {
	StockSymbol        string                       `json:"stock_symbol"`
	CompanyName        string                       `json:"company_name"`
	Sector             string                       `json:"sector"`
	MarketCap          float64                      `json:"market_cap"`
	ReportingYear      int                          `json:"reporting_year"`
	ReportingQuarter   string                       `json:"reporting_quarter,omitempty"`
	Ratios             models.FinancialRatios       `json:"financial_ratios"`
	OrganizationAccess constants.OrganizationAccess `json:"organization_access"`
}

// BulkUploadResponse is the async upload acknowledgement.
type BulkUploadResponse struct {
	JobID            string  `json:"job_id"`
	EstimatedMinutes float64 `json:"estimated_time_minutes"`
	TotalRows        int     `json:"total_rows"`
}

// List fetches the caller's own predictions of the given type.
func (s *PredictionsService) List(ctx context.Context, typ constants.PredictionType) (*PredictionList, error) {
	var out PredictionList
	if err := s.client.Get(ctx, "/predictions/"+string(typ), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSystem fetches the system-wide partition of the given type.
func (s *PredictionsService) ListSystem(ctx context.Context, typ constants.PredictionType) (*PredictionList, error) {
	var out PredictionList
	if err := s.client.Get(ctx, "/predictions/"+string(typ)+"/system", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create scores a single company and returns the stored prediction.
func (s *PredictionsService) Create(ctx context.Context, typ constants.PredictionType, req CreatePredictionRequest) (*models.Prediction, error) {
	var out models.Prediction
	if err := s.client.Post(ctx, "/predictions/"+string(typ), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update re-scores an existing prediction. The server returns the replacement
// record; the caller swaps it into the cache by id.
func (s *PredictionsService) Update(ctx context.Context, typ constants.PredictionType, id string, req CreatePredictionRequest) (*models.Prediction, error) {
	var out models.Prediction
	if err := s.client.Put(ctx, "/predictions/"+string(typ)+"/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a prediction by id.
func (s *PredictionsService) Delete(ctx context.Context, typ constants.PredictionType, id string) error {
	return s.client.Delete(ctx, "/predictions/"+string(typ)+"/"+id)
}

// BulkUploadAsync submits a spreadsheet for background scoring and returns
// the server-issued job id with its completion estimate.
func (s *PredictionsService) BulkUploadAsync(ctx context.Context, typ constants.PredictionType, fileName string, file io.Reader, access constants.OrganizationAccess) (*BulkUploadResponse, error) {
	var out BulkUploadResponse
	fields := map[string]string{"organization_access": string(access)}
	path := "/predictions/" + string(typ) + "/bulk-upload-async"
	if err := s.client.Upload(ctx, path, fileName, file, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
