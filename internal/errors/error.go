package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryCompile Category = "compile"
	CategoryExecute Category = "execute"
	CategoryRender  Category = "render"
	CategoryOutput  Category = "output"
	CategoryPublish Category = "publish"
	CategoryCLI     Category = "cli"
)

// RCError is a structured error with a code, the file being processed,
// and a suggestion for fixing it.
type RCError struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (compile, execute, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// File is the source file being processed when the error occurred.
	File string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RCError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.File != "" {
		msg += " (" + e.File + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RCError) Unwrap() error {
	return e.Wrapped
}

// WithFile records the file being processed.
func (e *RCError) WithFile(path string) *RCError {
	e.File = path
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RCError) WithSuggestion(s string) *RCError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RCError) WithDetail(d string) *RCError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *RCError) Wrap(err error) *RCError {
	e.Wrapped = err
	return e
}

// New creates an RCError from a registered error code.
func New(code string) *RCError {
	template, ok := registry[code]
	if !ok {
		return &RCError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RCError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new RCError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RCError {
	return &RCError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an RCError. Errors that already
// carry an RCError anywhere in their chain are returned unchanged.
func FromError(err error, code string) *RCError {
	if err == nil {
		return nil
	}
	var re *RCError
	if errors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first RCError in err's chain, or "".
func Code(err error) string {
	var re *RCError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
