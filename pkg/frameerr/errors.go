package frameerr

import (
	"errors"
	"fmt"
)

const (
	CategoryInvalidPayload    = "invalid_payload"
	CategoryChannelClosed     = "channel_closed"
	CategoryCallbackFailure   = "callback_failure"
	CategorySurfaceCreation   = "surface_creation_failure"
	CategoryScriptEvaluation  = "script_evaluation_failure"
)

// Error represents a stable, categorized bridge failure.
type Error struct {
	Category string
	Detail   string
	cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return e.Category
	}

	return fmt.Sprintf("%s: %s", e.Category, e.Detail)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// New creates a categorized bridge error.
func New(category string, detail string) error {
	return &Error{Category: category, Detail: detail}
}

// Wrap creates a categorized bridge error that retains its cause for errors.Is/As.
func Wrap(category string, detail string, cause error) error {
	if cause != nil && detail == "" {
		detail = cause.Error()
	}

	return &Error{Category: category, Detail: detail, cause: cause}
}

// CategoryFromError returns the stable category for an error when available.
func CategoryFromError(err error) string {
	if err == nil {
		return ""
	}

	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}

	return ""
}

// Is reports whether err carries the given category.
func Is(err error, category string) bool {
	return CategoryFromError(err) == category
}
