// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
)

// Service errors.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrQuotaExceeded     = errors.New("free usage limit reached")
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailure   = errors.New("content provider failed")
	ErrMalformedResponse = errors.New("content provider returned a malformed response")
	ErrCreationNotFound  = errors.New("creation not found")
	ErrNotOwner          = errors.New("creation belongs to another user")
)

// invalidInput wraps ErrInvalidInput with the offending field.
func invalidInput(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
