package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/aryan0dhankhar/rentdesk/internal/reliability/circuitbreaker"
)

// ErrCircuitOpen is returned without contacting the backend while the breaker is open
var ErrCircuitOpen = circuitbreaker.ErrOpen

// Error is a non-2xx answer from the backend
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// parseError builds an Error from a response body. The backend puts the
// human-readable message under "error"; "message" is accepted as well.
func parseError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}
	if !gjson.ValidBytes(body) {
		return e
	}
	for _, field := range []string{"error", "message", "error.message"} {
		if v := gjson.GetBytes(body, field); v.Type == gjson.String && v.Str != "" {
			e.Message = v.Str
			break
		}
	}
	return e
}

// Message returns the single user-facing message for a failed request:
// the backend's own message when it sent one, otherwise fallback
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an API error with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
