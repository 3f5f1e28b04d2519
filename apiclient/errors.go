package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

var (
	ErrSessionExpired   = errs.ErrSessionExpired
	ErrNetwork          = errs.ErrNetwork
	ErrNotFound         = errs.ErrNotFound
	ErrNotAuthenticated = errs.ErrNotAuthenticated
)

const (
	MessageNetwork        = "Could not reach the server. Check your connection and try again."
	MessageSessionExpired = "Your session has expired. Please log in again."
	MessageUnknown        = "An unexpected error occurred."
)

// APIError is a failure reported by the API, decoded from the error envelope.
type APIError struct {
	StatusCode  int
	Code        string
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.FieldErrors) == 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fmt.Sprintf("api error %d: %s (fields: %s)", e.StatusCode, msg, strings.Join(fields, ", "))
}

// Is maps the HTTP status onto the package-wide sentinels, so callers can
// test with errors.Is(err, errs.ErrNotFound).
func (e *APIError) Is(target error) bool {
	switch target {
	case errs.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case errs.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsValidation reports whether the error carries per-field messages.
func (e *APIError) IsValidation() bool {
	return len(e.FieldErrors) > 0
}

// ErrorMessage turns any error from this package into text fit for a user.
// Network and unknown failures get a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	// a failed refresh wraps the refresh endpoint's own error
	case errors.Is(err, ErrSessionExpired):
		return MessageSessionExpired
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if t := http.StatusText(apiErr.StatusCode); t != "" {
			return t
		}
		return MessageUnknown
	case errors.Is(err, ErrNetwork):
		return MessageNetwork
	default:
		return MessageUnknown
	}
}

// FieldErrors returns the per-field messages of a validation failure, or nil.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
		return apiErr.FieldErrors
	}
	return nil
}

// StatusCode returns the HTTP status of an API error, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, errs.ErrNotAuthenticated)
}

func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
