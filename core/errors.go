package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned once the API rejected the bearer token. The session has been cleared by then.
	ErrUnauthorized = errors.New("session expired or not authenticated")

	// ErrCanceled is returned when the user declines a destructive-action confirmation.
	ErrCanceled = errors.New("action canceled")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
		}
		return "validation failed"
	}
	return err.Err.Error()
}

// APIError is a non-2xx response from the API.
// Message holds the server-supplied detail, if any.
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("api: %d %s", err.StatusCode, http.StatusText(err.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", err.StatusCode, err.Message)
}

func IsUnauthorized(err error) bool {
	return errors.Cause(err) == ErrUnauthorized
}

func IsCanceled(err error) bool {
	return errors.Cause(err) == ErrCanceled
}

func IsNotFound(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// ServerMessage returns the message the API attached to err, if any.
func ServerMessage(err error) string {
	switch e := errors.Cause(err).(type) {
	case *APIError:
		return e.Message
	case *ValidationError:
		return e.Error()
	}
	return ""
}
