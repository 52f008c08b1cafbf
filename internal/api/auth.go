// Package api contains the per-resource endpoint mappings for the AccuNode
// platform. Each service is stateless: it shapes requests, delegates to the
// transport client, and returns decoded models. All caching and retry policy
// lives in the stores and the transport layer.
package api

import (
	"context"

	"github.com/accunode/accunode-go/internal/domain/models"
	"github.com/accunode/accunode-go/internal/transport"
)

// AuthService maps the /auth endpoints.
type AuthService struct {
	client *transport.Client
}

func NewAuthService(client *transport.Client) *AuthService {
	return &AuthService{client: client}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type JoinRequest struct {
	JoinToken string `json:"join_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the token grant returned by login, register, and refresh.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
}

// Login exchanges credentials for a token pair.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := s.client.PostPublic(ctx, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns the initial token pair.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := s.client.PostPublic(ctx, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a refresh token for a new token pair. Goes through the
// public path: a 401 here must not recurse into another refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	if err := s.client.PostPublic(ctx, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the session server-side. Best effort; local state is
// cleared regardless of the outcome.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Post(ctx, "/auth/logout", nil, nil)
}

// Join attaches the authenticated user to an organization by join token.
func (s *AuthService) Join(ctx context.Context, joinToken string) (*models.User, error) {
	var out models.User
	if err := s.client.Post(ctx, "/auth/join", JoinRequest{JoinToken: joinToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
