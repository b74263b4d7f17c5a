package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryConfig   Category = "config"
	CategoryScenario Category = "scenario"
	CategoryCLI      Category = "cli"
)

// SproutError is a structured error with a code, suggestions, and documentation.
type SproutError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (runtime, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SproutError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SproutError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *SproutError) WithSuggestion(s string) *SproutError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *SproutError) WithDetail(d string) *SproutError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *SproutError) Wrap(err error) *SproutError {
	e.Wrapped = err
	return e
}

// LogValue renders the error as a group of slog attributes so that
// logger.Warn("...", "error", err) keeps the code queryable.
func (e *SproutError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("category", string(e.Category)),
		slog.String("message", e.Message),
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	return slog.GroupValue(attrs...)
}

// New creates a SproutError from a registered error code.
func New(code string) *SproutError {
	template, ok := registry[code]
	if !ok {
		return &SproutError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &SproutError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new SproutError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *SproutError {
	return &SproutError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a SproutError.
// Errors that already are (or wrap) a SproutError are returned as is.
func FromError(err error, code string) *SproutError {
	if err == nil {
		return nil
	}
	var se *SproutError
	if errors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first SproutError in err's chain, or "".
func Code(err error) string {
	var se *SproutError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
