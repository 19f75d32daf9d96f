package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyURLList  = fmt.Errorf("%w: at least one url is required", ErrInvalidInput)
	ErrNoItemContent = fmt.Errorf("%w: item has no content to summarize", ErrInvalidInput)
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ExternalHTTPError represents an unexpected HTTP status from an external service.
type ExternalHTTPError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *ExternalHTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}
