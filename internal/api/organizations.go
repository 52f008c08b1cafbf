package api

import (
	"context"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
)

// OrganizationsService maps the /organizations endpoints.
type OrganizationsService struct {
	client *transport.Client
}

func NewOrganizationsService(client *transport.Client) *OrganizationsService {
	return &OrganizationsService{client: client}
}

// OrganizationList is the organization collection response.
type OrganizationList struct {
	Items []models.Organization `json:"items"`
	Total int                   `json:"total"`
}

type organizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// List fetches the organizations visible to the caller.
func (s *OrganizationsService) List(ctx context.Context) (*OrganizationList, error) {
	var out OrganizationList
	if err := s.client.Get(ctx, "/organizations", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one organization.
func (s *OrganizationsService) Get(ctx context.Context, id string) (*models.Organization, error) {
	var out models.Organization
	if err := s.client.Get(ctx, "/organizations/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds an organization. Requires tenant-admin or above.
func (s *OrganizationsService) Create(ctx context.Context, name, description string) (*models.Organization, error) {
	var out models.Organization
	if err := s.client.Post(ctx, "/organizations", organizationRequest{Name: name, Description: description}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update renames or re-describes an organization.
func (s *OrganizationsService) Update(ctx context.Context, id, name, description string) (*models.Organization, error) {
	var out models.Organization
	if err := s.client.Put(ctx, "/organizations/"+id, organizationRequest{Name: name, Description: description}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an organization.
func (s *OrganizationsService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/organizations/"+id)
}

// RotateJoinToken issues a fresh join token for the organization.
func (s *OrganizationsService) RotateJoinToken(ctx context.Context, id string) (*models.Organization, error) {
	var out models.Organization
	if err := s.client.Post(ctx, "/organizations/"+id+"/join-token", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
