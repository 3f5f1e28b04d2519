package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

var (
	PasswordsDontMatchErr = errors.New("passwords do not match")
	NoUserInResponseErr   = errors.New("token response has no user")
)

// FormError is a client-side validation failure. Fields is keyed by the
// name of the offending form field.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error {
	return errs.ErrValidation
}

// formErrors returns a *FormError for a non-empty field map, or nil.
func formErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &FormError{Fields: fields}
}
