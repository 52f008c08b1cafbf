package api

import (
	"context"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
	"github.com/accunode/accunode-go/pkg/constants"
)

// UsersService maps the /users endpoints.
type UsersService struct {
	client *transport.Client
}

func NewUsersService(client *transport.Client) *UsersService {
	return &UsersService{client: client}
}

// UserList is the paginated user collection response.
type UserList struct {
	Items []models.User `json:"items"`
	Total int           `json:"total"`
}

type updateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
}

type updateRoleRequest struct {
	Role constants.Role `json:"role"`
}

// Me fetches the authenticated user's profile.
func (s *UsersService) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.client.Get(ctx, "/users/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe updates the authenticated user's profile.
func (s *UsersService) UpdateMe(ctx context.Context, fullName, email string) (*models.User, error) {
	var out models.User
	req := updateProfileRequest{FullName: fullName, Email: email}
	if err := s.client.Put(ctx, "/users/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches the users visible to the caller's role scope.
func (s *UsersService) List(ctx context.Context) (*UserList, error) {
	var out UserList
	if err := s.client.Get(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetRole changes a user's role. Requires org-admin or above.
func (s *UsersService) SetRole(ctx context.Context, userID string, role constants.Role) (*models.User, error) {
	var out models.User
	if err := s.client.Patch(ctx, "/users/"+userID+"/role", updateRoleRequest{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a user.
func (s *UsersService) Delete(ctx context.Context, userID string) error {
	return s.client.Delete(ctx, "/users/"+userID)
}
