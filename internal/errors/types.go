package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeMalformedFrontMatter = "MalformedFrontMatter"
	ErrCodeMalformedTable       = "MalformedTable"
	ErrCodeUnreadableInput      = "UnreadableInput"
	ErrCodeConfigInvalid        = "ConfigInvalid"
)

// DocError is a structured error carrying the document location it refers to.
type DocError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Line    int
}

// Error implements the error interface.
func (e *DocError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		location := e.Path
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *DocError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so callers can compare against sentinel values.
func (e *DocError) Is(target error) bool {
	var t *DocError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithLocation adds file location information.
func (e *DocError) WithLocation(path string, line int) *DocError {
	e.Path = path
	e.Line = line

	return e
}

// NewParseError creates a parse error. Parse errors are fatal for the
// document they occur in.
func NewParseError(code, message string, line int) *DocError {
	return &DocError{
		Type:    ErrorTypeParse,
		Code:    code,
		Message: message,
		Line:    line,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *DocError {
	return &DocError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *DocError {
	return &DocError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrMalformedFrontMatter = &DocError{Type: ErrorTypeParse, Code: ErrCodeMalformedFrontMatter}
	ErrMalformedTable       = &DocError{Type: ErrorTypeParse, Code: ErrCodeMalformedTable}
	ErrUnreadableInput      = &DocError{Type: ErrorTypeIO, Code: ErrCodeUnreadableInput}
)
