package errors

import (
	"errors"
	"fmt"
)

// Common error types for the blog client
var (
	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrNoRefreshToken   = errors.New("no refresh token")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Transport errors
	ErrNetwork        = errors.New("network error")
	ErrUnexpectedBody = errors.New("unexpected response body")

	// Validation errors
	ErrValidation = errors.New("validation failed")

	// Upload errors
	ErrNotAnImage = errors.New("file is not an image")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
