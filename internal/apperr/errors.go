// Package apperr defines the error kinds shared across the service and
// mapped to HTTP status codes at the API boundary.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// ErrProviderAuth marks a missing or rejected language-model credential.
	ErrProviderAuth = errors.New("provider credential missing or invalid")
	// ErrProvider marks any other failure talking to a language-model provider.
	ErrProvider = errors.New("provider request failed")
)
