package services

import (
	"errors"
	"fmt"
)

// ErrCheckoutInFlight rejects a checkout submitted while an earlier one for
// the same session is still being validated or submitted.
var ErrCheckoutInFlight = errors.New("a checkout is already in progress")

// ErrVendorNotFound is returned for a slug the backend does not know
var ErrVendorNotFound = errors.New("vendor not found")

// ValidationError is a local rejection; nothing was sent to the backend
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError wraps a failed call to the marketplace backend
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IntegrationError is a 2xx backend answer that reports failure
type IntegrationError struct {
	Op      string
	Message string
}

func (e *IntegrationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s was rejected by the backend", e.Op)
	}
	return fmt.Sprintf("%s was rejected by the backend: %s", e.Op, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
