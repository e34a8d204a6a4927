package auth

import (
	"context"
	"net/http"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/transport"
)

// LoginInput holds login credentials
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput holds the data for a new account
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service maps authentication operations to API calls. It never touches
// the session store; callers decide what to persist.
type Service struct {
	client transport.Doer
}

// New creates a new auth Service
func New(client transport.Doer) *Service {
	return &Service{client: client}
}

// Login authenticates with email and password
func (s *Service) Login(ctx context.Context, in LoginInput) (*model.AuthResponse, error) {
	return transport.Post[*model.AuthResponse](ctx, s.client, "/auth/login", in)
}

// Register creates a new account
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.AuthResponse, error) {
	return transport.Post[*model.AuthResponse](ctx, s.client, "/auth/register", in)
}

// Profile fetches the authenticated user's profile
func (s *Service) Profile(ctx context.Context) (*model.User, error) {
	return transport.Get[*model.User](ctx, s.client, "/auth/profile")
}

// ValidateToken reports whether the current token is accepted by the
// server. Any failure, including network errors, reports false.
func (s *Service) ValidateToken(ctx context.Context) bool {
	err := s.client.Do(ctx, http.MethodGet, "/auth/validate", nil, nil)
	return err == nil
}
