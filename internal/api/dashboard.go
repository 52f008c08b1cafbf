package api

import (
	"context"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
)

// DashboardService maps the aggregate-statistics endpoint. The server scopes
// the aggregates by the caller's role; the client sends no scope hint.
type DashboardService struct {
	client *transport.Client
}

func NewDashboardService(client *transport.Client) *DashboardService {
	return &DashboardService{client: client}
}

// Stats fetches the role-scoped dashboard aggregates.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := s.client.Post(ctx, "/predictions/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
