package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes produced by the client itself. Server-supplied codes are
// passed through unchanged.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeBadResponse  = "BAD_RESPONSE"
	CodeTimeout      = "TIMEOUT"
	CodeNetwork      = "NETWORK_ERROR"
	CodeCanceled     = "CANCELED"
	CodeDecode       = "DECODE_ERROR"
)

// Fixed user-facing messages
const (
	MessageSessionExpired = "Session expired. Please log in again."
	MessageUnexpected     = "An unexpected error occurred"
	MessageEmptyResponse  = "Server returned an empty response"
)

// Error is the normalized error returned for every failed request.
// Status is zero when no response was received.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// NewSessionExpiredError returns the error reported for any 401 response
func NewSessionExpiredError() *Error {
	return &Error{
		Message: MessageSessionExpired,
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
	}
}

// AsError extracts a normalized *Error from err
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsUnauthorized returns true if err reports an expired or missing session
func IsUnauthorized(err error) bool {
	e, ok := AsError(err)
	return ok && e.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	if e, ok := AsError(err); ok {
		return e.Status
	}
	return 0
}

// serverError is the union of error bodies servers send: a top-level
// message/code, or an {"error": {...}} envelope
type serverError struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
}

type serverErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// parseServerError extracts a message and code from an error body.
// Both are empty when the body carries neither.
func parseServerError(body []byte) (message, code string) {
	var se serverError
	if err := json.Unmarshal(body, &se); err != nil {
		return "", ""
	}
	message, code = se.Message, se.Code

	if len(se.Error) > 0 {
		var detail serverErrorDetail
		var text string
		switch {
		case json.Unmarshal(se.Error, &detail) == nil:
			if message == "" {
				message = detail.Message
			}
			if code == "" {
				code = detail.Code
			}
		case json.Unmarshal(se.Error, &text) == nil:
			if message == "" {
				message = text
			}
		}
	}
	return strings.TrimSpace(message), code
}

// statusCode returns the transport code used when the server supplies none
func statusCode(status int) string {
	if status >= http.StatusInternalServerError {
		return CodeBadResponse
	}
	return CodeBadRequest
}
