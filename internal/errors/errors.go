// Package errors provides sentinel errors for the usbuild CLI.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates invalid configuration.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a config file, entry module or artifact was not found.
	ErrNotFound = errors.New("not found")

	// ErrBuild indicates the bundler reported errors.
	ErrBuild = errors.New("build error")

	// ErrServer indicates the dev reload server could not be started.
	ErrServer = errors.New("server error")
)

// DetailError is an error with a category, the file or module it concerns
// and a hint for fixing it. Only Type and Message are required.
type DetailError struct {
	Type     string
	Message  string
	Location string
	// Field is the dotted config key, e.g. header.name.
	Field   string
	Context map[string]string
	Hint    string
	Cause   error
}

// Error renders the category and message on the first line, followed by
// one indented line per detail. Context keys are sorted.
func (e *DetailError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Type, e.Message)

	detail := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\n  %s: %s", key, value)
		}
	}
	detail("location", e.Location)
	detail("field", e.Field)
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		detail(k, e.Context[k])
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n\nhint: %s", e.Hint)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, field, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Field:    field,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// NewBuildError creates a bundler error listing the bundler's messages.
func NewBuildError(message string, context map[string]string) error {
	return &DetailError{
		Type:    "build failed",
		Message: message,
		Context: context,
		Cause:   ErrBuild,
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
