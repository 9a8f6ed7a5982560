// Package errors provides error handling for the string analysis server.
//
// This package re-exports github.com/cockroachdb/errors, so errors created
// here carry stack traces and survive wrapping with errors.Is intact.
//
// Usage:
//
//	// Wrap a sentinel with context
//	return errors.Wrapf(errors.ErrNotFound, "value %q", value)
//
//	// Check it at the edge
//	if errors.Is(err, errors.ErrNotFound) {
//	    // 404
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New   = crdb.New
	Newf  = crdb.Newf
	Wrap  = crdb.Wrap
	Wrapf = crdb.Wrapf
)

// User-facing hints
var (
	WithHintf   = crdb.WithHintf
	GetAllHints = crdb.GetAllHints
)

// Error inspection
var (
	Is = crdb.Is
	As = crdb.As
)

// Sentinel errors for the string store. Wrap them with Wrap/Wrapf to add
// context; errors.Is still matches the sentinel afterwards.
var (
	// ErrInvalidInput indicates malformed request data.
	ErrInvalidInput = New("invalid input")

	// ErrMissingValue indicates a create request without a usable value.
	// It is also an ErrInvalidInput.
	ErrMissingValue = Wrap(ErrInvalidInput, "missing value")

	// ErrMissingQuery indicates a natural-language request without query text.
	// It is also an ErrInvalidInput.
	ErrMissingQuery = Wrap(ErrInvalidInput, "missing query")

	// ErrConflict indicates a record with the same content identity exists.
	ErrConflict = New("string already exists")

	// ErrNotFound indicates no record holds the requested value.
	ErrNotFound = New("string not found")

	// ErrNoMatches indicates a structured filter matched nothing.
	ErrNoMatches = New("no matches")

	// ErrUnparsableQuery indicates no natural-language rule fired.
	ErrUnparsableQuery = New("unable to parse query")
)

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return err != nil && Is(err, ErrInvalidInput)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsConflict reports whether err is or wraps ErrConflict.
func IsConflict(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// NewInvalidInputError creates an invalid-input error with a formatted message.
func NewInvalidInputError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidInput, Newf(format, args...).Error())
}
