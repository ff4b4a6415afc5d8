package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the auth service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Message is the server's "message" field, or the status text when the
	// body was not the usual envelope.
	Message string

	// Stack is only set by servers running in development mode.
	Stack string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("authsdk: HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseErrorResponse turns a failed HTTP response into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
			Stack:      errResp.Stack,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 256 {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
