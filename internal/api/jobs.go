package api

import (
	"context"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
)

// JobsService maps the /jobs endpoints used by the polling loop.
type JobsService struct {
	client *transport.Client
}

func NewJobsService(client *transport.Client) *JobsService {
	return &JobsService{client: client}
}

// Get fetches the current status snapshot for a job.
func (s *JobsService) Get(ctx context.Context, id string) (*models.Job, error) {
	var out models.Job
	if err := s.client.Get(ctx, "/jobs/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Details fetches the full job record including result rows. Called once a
// job reports completed.
func (s *JobsService) Details(ctx context.Context, id string) (*models.Job, error) {
	var out models.Job
	if err := s.client.Get(ctx, "/jobs/"+id+"/details", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel asks the server to stop a job that has not finished.
func (s *JobsService) Cancel(ctx context.Context, id string) error {
	return s.client.Post(ctx, "/jobs/"+id+"/cancel", nil, nil)
}

// Retry resubmits a failed job.
func (s *JobsService) Retry(ctx context.Context, id string) (*models.Job, error) {
	var out models.Job
	if err := s.client.Post(ctx, "/jobs/"+id+"/retry", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
