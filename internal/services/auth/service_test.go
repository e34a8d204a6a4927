package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/services/auth"
	"github.com/mcoot/battleship-client/internal/services/match"
	"github.com/mcoot/battleship-client/internal/session/memory"
	"github.com/mcoot/battleship-client/internal/testutil"
	"github.com/mcoot/battleship-client/internal/testutil/fakeapi"
	"github.com/mcoot/battleship-client/internal/transport"
)

type ServiceSuite struct {
	suite.Suite
	api     *fakeapi.Server
	store   *memory.Store
	service *auth.Service
	client  *transport.Client
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.api = fakeapi.New(s.T())
	s.api.AddUser(model.User{ID: "u1", Username: "alice", Email: "a@b.com", Wins: 3}, "x", "t1")
	s.store = memory.New()
	s.client = transport.New(transport.Config{
		BaseURL: s.api.URL,
		Store:   s.store,
		Logger:  testutil.NopLogger(),
	})
	s.service = auth.New(s.client)
	s.ctx = context.Background()
}

// Login tests

func (s *ServiceSuite) TestLoginReturnsTokenAndUser() {
	resp, err := s.service.Login(s.ctx, auth.LoginInput{Email: "a@b.com", Password: "x"})
	s.Require().NoError(err)

	s.Equal("t1", resp.Token)
	s.Equal(model.UserID("u1"), resp.User.ID)
	s.Equal(3, resp.User.Wins)

	req, ok := s.api.LastRequest(http.MethodPost, "/auth/login")
	s.Require().True(ok)
	var body map[string]string
	s.Require().NoError(json.Unmarshal(req.Body, &body))
	s.Equal(map[string]string{"email": "a@b.com", "password": "x"}, body)
}

func (s *ServiceSuite) TestLoginDoesNotPersistToken() {
	_, err := s.service.Login(s.ctx, auth.LoginInput{Email: "a@b.com", Password: "x"})
	s.Require().NoError(err)

	token, _ := s.store.Token(s.ctx)
	s.Empty(token)
}

func (s *ServiceSuite) TestLoginInvalidCredentials() {
	_, err := s.service.Login(s.ctx, auth.LoginInput{Email: "a@b.com", Password: "wrong"})

	apiErr, ok := transport.AsError(err)
	s.Require().True(ok)
	s.Equal("Invalid email or password", apiErr.Message)
	s.Equal("INVALID_CREDENTIALS", apiErr.Code)
	s.Equal(http.StatusBadRequest, apiErr.Status)
}

func (s *ServiceSuite) TestLoginThenRequestsCarryToken() {
	resp, err := s.service.Login(s.ctx, auth.LoginInput{Email: "a@b.com", Password: "x"})
	s.Require().NoError(err)
	s.Require().NoError(s.store.SetToken(s.ctx, resp.Token))

	_, _ = match.New(s.client).Get(s.ctx, "m1")

	req, ok := s.api.LastRequest(http.MethodGet, "/matches/m1")
	s.Require().True(ok)
	s.Equal("Bearer t1", req.Authorization)
}

// Register tests

func (s *ServiceSuite) TestRegister() {
	resp, err := s.service.Register(s.ctx, auth.RegisterInput{Username: "bob", Email: "bob@b.com", Password: "pw"})
	s.Require().NoError(err)

	s.NotEmpty(resp.Token)
	s.Equal("bob", resp.User.Username)
	s.Equal("bob@b.com", resp.User.Email)
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	_, err := s.service.Register(s.ctx, auth.RegisterInput{Username: "alice2", Email: "a@b.com", Password: "pw"})

	apiErr, ok := transport.AsError(err)
	s.Require().True(ok)
	s.Equal(http.StatusConflict, apiErr.Status)
	s.Equal("Email already registered", apiErr.Message)
}

// Profile tests

func (s *ServiceSuite) TestProfile() {
	_ = s.store.SetToken(s.ctx, "t1")

	user, err := s.service.Profile(s.ctx)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *ServiceSuite) TestProfileUnauthorizedClearsToken() {
	_ = s.store.SetToken(s.ctx, "expired")

	user, err := s.service.Profile(s.ctx)
	s.Nil(user)

	apiErr, ok := transport.AsError(err)
	s.Require().True(ok)
	s.Equal(&transport.Error{
		Message: "Session expired. Please log in again.",
		Status:  401,
		Code:    "UNAUTHORIZED",
	}, apiErr)

	token, _ := s.store.Token(s.ctx)
	s.Empty(token)
}

// ValidateToken tests

func (s *ServiceSuite) TestValidateTokenValid() {
	_ = s.store.SetToken(s.ctx, "t1")
	s.True(s.service.ValidateToken(s.ctx))
}

func (s *ServiceSuite) TestValidateTokenUnauthorized() {
	_ = s.store.SetToken(s.ctx, "bogus")
	s.False(s.service.ValidateToken(s.ctx))
}

func (s *ServiceSuite) TestValidateTokenServerError() {
	_ = s.store.SetToken(s.ctx, "t1")
	s.api.FailNext(http.MethodGet, "/auth/validate", http.StatusInternalServerError, `{"message":"boom"}`)

	s.False(s.service.ValidateToken(s.ctx))
}

func (s *ServiceSuite) TestValidateTokenNetworkError() {
	offline := auth.New(transport.New(transport.Config{BaseURL: "http://127.0.0.1:1", Store: s.store}))
	s.False(offline.ValidateToken(s.ctx))
}
