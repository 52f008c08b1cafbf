package api

import (
	"context"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
)

// TenantsService maps the /tenants and /tenant-admin endpoints. Only
// super-admins reach /tenants; tenant admins use the /tenant-admin views of
// their own tenant.
type TenantsService struct {
	client *transport.Client
}

func NewTenantsService(client *transport.Client) *TenantsService {
	return &TenantsService{client: client}
}

// TenantList is the tenant collection response.
type TenantList struct {
	Items []models.Tenant `json:"items"`
	Total int             `json:"total"`
}

type tenantRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}

// List fetches all tenants. Super-admin only.
func (s *TenantsService) List(ctx context.Context) (*TenantList, error) {
	var out TenantList
	if err := s.client.Get(ctx, "/tenants", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create adds a tenant. Super-admin only.
func (s *TenantsService) Create(ctx context.Context, name, domain string) (*models.Tenant, error) {
	var out models.Tenant
	if err := s.client.Post(ctx, "/tenants", tenantRequest{Name: name, Domain: domain}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update modifies a tenant. Super-admin only.
func (s *TenantsService) Update(ctx context.Context, id, name, domain string) (*models.Tenant, error) {
	var out models.Tenant
	if err := s.client.Put(ctx, "/tenants/"+id, tenantRequest{Name: name, Domain: domain}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a tenant. Super-admin only.
func (s *TenantsService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/tenants/"+id)
}

// MyTenant fetches the caller's own tenant via the tenant-admin surface.
func (s *TenantsService) MyTenant(ctx context.Context) (*models.Tenant, error) {
	var out models.Tenant
	if err := s.client.Get(ctx, "/tenant-admin/tenant", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrganizations fetches the organizations under the caller's tenant.
func (s *TenantsService) MyOrganizations(ctx context.Context) (*OrganizationList, error) {
	var out OrganizationList
	if err := s.client.Get(ctx, "/tenant-admin/organizations", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
