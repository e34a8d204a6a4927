package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/mcoot/battleship-client/internal/session"
	"github.com/mcoot/battleship-client/internal/session/memory"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 10 * time.Second

// Doer performs a JSON request against the API. Resource adapters depend
// on this rather than on *Client.
type Doer interface {
	Do(ctx context.Context, method, path string, body, result any) error
}

// Config configures a Client
type Config struct {
	// BaseURL is prepended to every request path
	BaseURL string
	// Timeout defaults to DefaultTimeout
	Timeout time.Duration
	// Store supplies the bearer token and is cleared on 401.
	// If nil, an in-memory store is used.
	Store session.Store
	// Logger receives request logs (optional)
	Logger *slog.Logger
	// HTTPClient overrides the underlying client; its Timeout is replaced
	HTTPClient *http.Client

	// RequestMiddleware runs after the built-in request middleware
	RequestMiddleware []RequestMiddleware
	// ResponseMiddleware runs after logging and before session expiry
	// and error normalization
	ResponseMiddleware []ResponseMiddleware
}

// Client is the shared HTTP client for the API
type Client struct {
	baseURL            string
	httpClient         *http.Client
	store              session.Store
	requestMiddleware  []RequestMiddleware
	responseMiddleware []ResponseMiddleware
}

// Ensure Client implements Doer
var _ Doer = (*Client)(nil)

// New creates a new API client
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	store := cfg.Store
	if store == nil {
		store = memory.New()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	}
	httpClient.Timeout = timeout

	requestMiddleware := []RequestMiddleware{RequestID(), BearerToken(store)}
	requestMiddleware = append(requestMiddleware, cfg.RequestMiddleware...)

	responseMiddleware := []ResponseMiddleware{Logging(logger)}
	responseMiddleware = append(responseMiddleware, cfg.ResponseMiddleware...)
	responseMiddleware = append(responseMiddleware, ExpireSession(store, logger), NormalizeErrors())

	return &Client{
		baseURL:            strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:         httpClient,
		store:              store,
		requestMiddleware:  requestMiddleware,
		responseMiddleware: responseMiddleware,
	}
}

// Store returns the session store the client reads credentials from
func (c *Client) Store() session.Store {
	return c.store
}

// Do performs an HTTP request. body is JSON-encoded when non-nil and a
// successful response is decoded into result when non-nil. Every failure
// is returned as an *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &Error{Message: err.Error()}
	}

	for _, mw := range c.requestMiddleware {
		req, err = mw(req)
		if err != nil {
			return asError(err)
		}
	}

	res := c.send(req)

	for _, mw := range c.responseMiddleware {
		res, err = mw(res)
		if err != nil {
			return asError(err)
		}
		if res == nil {
			return &Error{Message: MessageUnexpected}
		}
	}

	if result == nil {
		return nil
	}
	if len(bytes.TrimSpace(res.Body)) > 0 {
		if err := json.Unmarshal(res.Body, result); err != nil {
			return &Error{
				Message: fmt.Sprintf("failed to parse response: %v", err),
				Status:  res.StatusCode,
				Code:    CodeDecode,
			}
		}
	}
	if isNilObject(result) {
		return &Error{
			Message: MessageEmptyResponse,
			Status:  res.StatusCode,
			Code:    CodeDecode,
		}
	}

	return nil
}

// isNilObject reports whether result points at a nil pointer, which is
// what an empty or null body leaves behind for object responses. Slices
// and maps stay valid as empty values.
func isNilObject(result any) bool {
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	elem := v.Elem()
	return elem.Kind() == reflect.Pointer && elem.IsNil()
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) send(req *http.Request) *Response {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Response{Request: req, Err: err, Duration: time.Since(start)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	res := &Response{
		Request:    req,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Duration:   time.Since(start),
	}
	if err != nil {
		res.Err = fmt.Errorf("failed to read response: %w", err)
	}
	return res
}

func asError(err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	message := err.Error()
	if message == "" {
		message = MessageUnexpected
	}
	return &Error{Message: message}
}

// Get performs a GET request and decodes the response as T
func Get[T any](ctx context.Context, d Doer, path string) (T, error) {
	var result T
	if err := d.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Post performs a POST request and decodes the response as T
func Post[T any](ctx context.Context, d Doer, path string, body any) (T, error) {
	var result T
	if err := d.Do(ctx, http.MethodPost, path, body, &result); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
