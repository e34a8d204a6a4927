package transport_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-client/internal/session/memory"
	"github.com/mcoot/battleship-client/internal/testutil"
	"github.com/mcoot/battleship-client/internal/transport"
)

type ClientSuite struct {
	suite.Suite
	store  *memory.Store
	ctx    context.Context
	server *httptest.Server

	mu       sync.Mutex
	handler  http.HandlerFunc
	received []*http.Request
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.store = memory.New()
	s.ctx = context.Background()
	s.received = nil
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.received = append(s.received, r.Clone(context.Background()))
		handler := s.handler
		s.mu.Unlock()
		handler(w, r)
	}))
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) newClient() *transport.Client {
	return transport.New(transport.Config{
		BaseURL: s.server.URL + "/",
		Store:   s.store,
		Logger:  testutil.NopLogger(),
	})
}

func (s *ClientSuite) respond(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (s *ClientSuite) lastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.received)
	return s.received[len(s.received)-1]
}

func (s *ClientSuite) requireError(err error) *transport.Error {
	s.Require().Error(err)
	apiErr, ok := transport.AsError(err)
	s.Require().True(ok, "expected *transport.Error, got %T", err)
	s.NotEmpty(apiErr.Message)
	return apiErr
}

// Request middleware

func (s *ClientSuite) TestAttachesBearerTokenWhenPresent() {
	_ = s.store.SetToken(s.ctx, "t1")

	err := s.newClient().Get(s.ctx, "/matches", nil)
	s.Require().NoError(err)

	s.Equal("Bearer t1", s.lastRequest().Header.Get("Authorization"))
}

func (s *ClientSuite) TestOmitsAuthorizationWhenNoToken() {
	err := s.newClient().Get(s.ctx, "/matches", nil)
	s.Require().NoError(err)

	_, present := s.lastRequest().Header["Authorization"]
	s.False(present)
}

func (s *ClientSuite) TestReadsTokenOnEveryRequest() {
	client := s.newClient()

	_ = client.Get(s.ctx, "/a", nil)
	s.Empty(s.lastRequest().Header.Get("Authorization"))

	_ = s.store.SetToken(s.ctx, "t2")
	_ = client.Get(s.ctx, "/b", nil)
	s.Equal("Bearer t2", s.lastRequest().Header.Get("Authorization"))
}

func (s *ClientSuite) TestSetsRequestIDAndJSONHeaders() {
	err := s.newClient().Post(s.ctx, "/matches", map[string]int{"row": 1}, nil)
	s.Require().NoError(err)

	req := s.lastRequest()
	s.NotEmpty(req.Header.Get(transport.RequestIDHeader))
	s.Equal("application/json", req.Header.Get("Content-Type"))
	s.Equal("application/json", req.Header.Get("Accept"))
	s.Equal("/matches", req.URL.Path)
}

func (s *ClientSuite) TestCustomRequestMiddlewareRunsAfterBuiltins() {
	var sawAuth string
	client := transport.New(transport.Config{
		BaseURL: s.server.URL,
		Store:   s.store,
		RequestMiddleware: []transport.RequestMiddleware{
			func(req *http.Request) (*http.Request, error) {
				sawAuth = req.Header.Get("Authorization")
				req.Header.Set("X-Client", "cli")
				return req, nil
			},
		},
	})
	_ = s.store.SetToken(s.ctx, "t1")

	s.Require().NoError(client.Get(s.ctx, "/matches", nil))
	s.Equal("Bearer t1", sawAuth)
	s.Equal("cli", s.lastRequest().Header.Get("X-Client"))
}

func (s *ClientSuite) TestRequestMiddlewareErrorAbortsRequest() {
	client := transport.New(transport.Config{
		BaseURL: s.server.URL,
		Store:   s.store,
		RequestMiddleware: []transport.RequestMiddleware{
			func(req *http.Request) (*http.Request, error) {
				return nil, errors.New("blocked")
			},
		},
	})

	err := client.Get(s.ctx, "/matches", nil)
	apiErr := s.requireError(err)
	s.Equal("blocked", apiErr.Message)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Empty(s.received)
}

// Success path

func (s *ClientSuite) TestDecodesSuccessfulResponse() {
	s.respond(http.StatusOK, `{"id":"m1","status":"waiting"}`)

	var result struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	s.Require().NoError(s.newClient().Get(s.ctx, "/matches/m1", &result))
	s.Equal("m1", result.ID)
	s.Equal("waiting", result.Status)
}

func (s *ClientSuite) TestGenericHelpers() {
	s.respond(http.StatusCreated, `["a","b"]`)

	items, err := transport.Post[[]string](s.ctx, s.newClient(), "/matches", nil)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, items)
	s.Equal(http.MethodPost, s.lastRequest().Method)
}

func (s *ClientSuite) TestEmptySuccessBodyIsAccepted() {
	s.respond(http.StatusNoContent, "")

	var result map[string]any
	s.Require().NoError(s.newClient().Get(s.ctx, "/auth/validate", &result))
	s.Nil(result)
}

type snapshot struct {
	ID string `json:"id"`
}

func (s *ClientSuite) TestNullBodyForObjectIsRejected() {
	for _, body := range []string{"null", " null\n"} {
		s.respond(http.StatusOK, body)

		result, err := transport.Get[*snapshot](s.ctx, s.newClient(), "/matches/m1")
		apiErr := s.requireError(err)
		s.Nil(result)
		s.Equal(transport.CodeDecode, apiErr.Code)
		s.Equal(http.StatusOK, apiErr.Status)
		s.Equal(transport.MessageEmptyResponse, apiErr.Message)
	}
}

func (s *ClientSuite) TestEmptyBodyForObjectIsRejected() {
	s.respond(http.StatusCreated, "")

	result, err := transport.Post[*snapshot](s.ctx, s.newClient(), "/matches", nil)
	apiErr := s.requireError(err)
	s.Nil(result)
	s.Equal(transport.CodeDecode, apiErr.Code)
	s.Equal(http.StatusCreated, apiErr.Status)
}

func (s *ClientSuite) TestNullBodyForListIsEmpty() {
	s.respond(http.StatusOK, "null")

	items, err := transport.Get[[]snapshot](s.ctx, s.newClient(), "/matches")
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *ClientSuite) TestMalformedSuccessBodyIsNormalized() {
	s.respond(http.StatusOK, `{not json`)

	var result map[string]any
	apiErr := s.requireError(s.newClient().Get(s.ctx, "/matches", &result))
	s.Equal(transport.CodeDecode, apiErr.Code)
	s.Equal(http.StatusOK, apiErr.Status)
}

// Unauthorized

func (s *ClientSuite) TestUnauthorizedClearsTokenAndReturnsFixedError() {
	_ = s.store.SetToken(s.ctx, "t1")
	s.respond(http.StatusUnauthorized, `{"message":"token expired","code":"TOKEN_EXPIRED"}`)

	err := s.newClient().Get(s.ctx, "/auth/profile", nil)

	apiErr := s.requireError(err)
	s.Equal(&transport.Error{
		Message: "Session expired. Please log in again.",
		Status:  401,
		Code:    "UNAUTHORIZED",
	}, apiErr)
	s.True(transport.IsUnauthorized(err))

	token, _ := s.store.Token(s.ctx)
	s.Empty(token)
}

// stuckStore is a session store that cannot remove its token
type stuckStore struct {
	*memory.Store
}

func (stuckStore) RemoveToken(ctx context.Context) error {
	return errors.New("disk full")
}

func (s *ClientSuite) TestUnauthorizedLogsTokenRemovalFailure() {
	store := stuckStore{Store: memory.New()}
	_ = store.SetToken(s.ctx, "t1")
	var logs bytes.Buffer
	client := transport.New(transport.Config{
		BaseURL: s.server.URL,
		Store:   store,
		Logger:  slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	s.respond(http.StatusUnauthorized, "")

	apiErr := s.requireError(client.Get(s.ctx, "/auth/profile", nil))
	s.Equal(transport.MessageSessionExpired, apiErr.Message)

	s.Contains(logs.String(), `"level":"WARN"`)
	s.Contains(logs.String(), "failed to remove expired session token")
	s.Contains(logs.String(), "disk full")
}

func (s *ClientSuite) TestUnauthorizedIgnoresBody() {
	for _, body := range []string{"", "plain text", `{"error":{"message":"nope"}}`} {
		_ = s.store.SetToken(s.ctx, "t1")
		s.respond(http.StatusUnauthorized, body)

		apiErr := s.requireError(s.newClient().Get(s.ctx, "/matches", nil))
		s.Equal(transport.MessageSessionExpired, apiErr.Message)
		s.Equal(transport.CodeUnauthorized, apiErr.Code)
		s.Equal(http.StatusUnauthorized, apiErr.Status)
	}
}

func (s *ClientSuite) TestUnauthorizedWithoutTokenIsIdempotent() {
	s.respond(http.StatusUnauthorized, "")

	apiErr := s.requireError(s.newClient().Get(s.ctx, "/matches", nil))
	s.Equal(transport.CodeUnauthorized, apiErr.Code)
}

func (s *ClientSuite) TestUnauthorizedKeepsRefreshToken() {
	_ = s.store.SetToken(s.ctx, "t1")
	_ = s.store.SetRefreshToken(s.ctx, "r1")
	s.respond(http.StatusUnauthorized, "")

	_ = s.newClient().Get(s.ctx, "/matches", nil)

	refresh, _ := s.store.RefreshToken(s.ctx)
	s.Equal("r1", refresh)
}

// Other failures

func (s *ClientSuite) TestServerMessageAndCodeArePreferred() {
	s.respond(http.StatusConflict, `{"message":"Match is full","code":"MATCH_FULL"}`)

	apiErr := s.requireError(s.newClient().Post(s.ctx, "/matches/m1/join", nil, nil))
	s.Equal("Match is full", apiErr.Message)
	s.Equal("MATCH_FULL", apiErr.Code)
	s.Equal(http.StatusConflict, apiErr.Status)
}

func (s *ClientSuite) TestNestedErrorEnvelope() {
	s.respond(http.StatusForbidden, `{"error":{"code":"NOT_YOUR_TURN","message":"Not your turn"}}`)

	apiErr := s.requireError(s.newClient().Post(s.ctx, "/matches/m1/shoot", nil, nil))
	s.Equal("Not your turn", apiErr.Message)
	s.Equal("NOT_YOUR_TURN", apiErr.Code)
}

func (s *ClientSuite) TestStringErrorField() {
	s.respond(http.StatusBadRequest, `{"error":"Invalid placement"}`)

	apiErr := s.requireError(s.newClient().Post(s.ctx, "/matches/m1/setup", nil, nil))
	s.Equal("Invalid placement", apiErr.Message)
	s.Equal(transport.CodeBadRequest, apiErr.Code)
}

func (s *ClientSuite) TestFallsBackToTransportMessage() {
	s.respond(http.StatusInternalServerError, `<html>oops</html>`)

	apiErr := s.requireError(s.newClient().Get(s.ctx, "/matches", nil))
	s.Equal("request failed with status code 500", apiErr.Message)
	s.Equal(http.StatusInternalServerError, apiErr.Status)
	s.Equal(transport.CodeBadResponse, apiErr.Code)
}

func (s *ClientSuite) TestBlankServerMessageFallsBack() {
	s.respond(http.StatusNotFound, `{"message":"   "}`)

	apiErr := s.requireError(s.newClient().Get(s.ctx, "/matches/nope", nil))
	s.Equal("request failed with status code 404", apiErr.Message)
	s.Equal(transport.CodeBadRequest, apiErr.Code)
}

func (s *ClientSuite) TestNetworkFailureHasNoStatus() {
	client := transport.New(transport.Config{BaseURL: "http://127.0.0.1:1", Store: s.store})

	apiErr := s.requireError(client.Get(s.ctx, "/matches", nil))
	s.Zero(apiErr.Status)
	s.Equal(transport.CodeNetwork, apiErr.Code)
}

func (s *ClientSuite) TestTimeout() {
	s.mu.Lock()
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
	s.mu.Unlock()

	client := transport.New(transport.Config{
		BaseURL: s.server.URL,
		Store:   s.store,
		Timeout: 50 * time.Millisecond,
	})

	apiErr := s.requireError(client.Get(s.ctx, "/matches", nil))
	s.Equal(transport.CodeTimeout, apiErr.Code)
	s.Zero(apiErr.Status)
}

func (s *ClientSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	apiErr := s.requireError(s.newClient().Get(ctx, "/matches", nil))
	s.Equal(transport.CodeCanceled, apiErr.Code)
}

func (s *ClientSuite) TestCustomResponseMiddlewareCanShortCircuit() {
	s.respond(http.StatusTeapot, `{"message":"teapot"}`)
	client := transport.New(transport.Config{
		BaseURL: s.server.URL,
		Store:   s.store,
		ResponseMiddleware: []transport.ResponseMiddleware{
			func(res *transport.Response) (*transport.Response, error) {
				if res.StatusCode == http.StatusTeapot {
					return nil, &transport.Error{Message: "custom", Status: res.StatusCode, Code: "TEAPOT"}
				}
				return res, nil
			},
		},
	})

	apiErr := s.requireError(client.Get(s.ctx, "/matches", nil))
	s.Equal("custom", apiErr.Message)
	s.Equal("TEAPOT", apiErr.Code)
}
