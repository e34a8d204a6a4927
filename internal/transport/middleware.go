package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/battleship-client/internal/session"
)

// RequestIDHeader carries a per-request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestMiddleware mutates an outgoing request. Returning an error aborts
// the request before it is sent.
type RequestMiddleware func(req *http.Request) (*http.Request, error)

// Response is a settled request as seen by response middleware: either a
// received response with its body fully read, or a transport failure in Err.
type Response struct {
	Request    *http.Request
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	Err        error
}

// Failed returns true for transport failures and non-2xx statuses
func (r *Response) Failed() bool {
	return r.Err != nil || r.StatusCode < 200 || r.StatusCode >= 300
}

// ResponseMiddleware inspects or replaces a settled response. Returning an
// error short-circuits the remaining middleware and fails the call.
type ResponseMiddleware func(res *Response) (*Response, error)

// BearerToken attaches the current session token as a bearer credential.
// Requests proceed unauthenticated when no token is stored.
func BearerToken(store session.Store) RequestMiddleware {
	return func(req *http.Request) (*http.Request, error) {
		token, err := store.Token(req.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to read session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	}
}

// RequestID tags each request with a fresh UUID unless one is already set
func RequestID() RequestMiddleware {
	return func(req *http.Request) (*http.Request, error) {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		return req, nil
	}
}

// ExpireSession clears the stored session token on any 401 and fails with
// the session-expired error, whatever the response body says.
// TODO: try a refresh-token exchange and replay the request before giving up.
// A token that cannot be removed is logged; the caller still gets the
// session-expired error.
func ExpireSession(store session.Store, logger *slog.Logger) ResponseMiddleware {
	return func(res *Response) (*Response, error) {
		if res.Err != nil || res.StatusCode != http.StatusUnauthorized {
			return res, nil
		}
		if err := store.RemoveToken(context.WithoutCancel(res.Request.Context())); err != nil {
			logger.Warn("failed to remove expired session token",
				slog.String("path", res.Request.URL.Path),
				slog.Any("error", err),
			)
		}
		return nil, NewSessionExpiredError()
	}
}

// NormalizeErrors converts any remaining failure into an *Error
func NormalizeErrors() ResponseMiddleware {
	return func(res *Response) (*Response, error) {
		if !res.Failed() {
			return res, nil
		}
		return nil, normalize(res)
	}
}

func normalize(res *Response) *Error {
	e := &Error{Status: res.StatusCode}

	if res.Err != nil {
		e.Message = res.Err.Error()
		e.Code = transportCode(res.Err)
	} else {
		message, code := parseServerError(res.Body)
		e.Message = message
		if e.Message == "" {
			e.Message = fmt.Sprintf("request failed with status code %d", res.StatusCode)
		}
		e.Code = code
		if e.Code == "" {
			e.Code = statusCode(res.StatusCode)
		}
	}

	if e.Message == "" {
		e.Message = MessageUnexpected
	}
	return e
}

func transportCode(err error) string {
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}
	return CodeNetwork
}
