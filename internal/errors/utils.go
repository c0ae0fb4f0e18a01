package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a DocError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *DocError {
	if err == nil {
		return nil
	}

	// Keep the location of an inner DocError
	var de *DocError
	if errors.As(err, &de) {
		return &DocError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   de,
			Path:    de.Path,
			Line:    de.Line,
		}
	}

	return &DocError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error
func WrapIO(err error, code, message string) *DocError {
	return Wrap(err, ErrorTypeIO, code, message)
}

// IsParseError reports whether err is (or wraps) a document parse error.
func IsParseError(err error) bool {
	var de *DocError
	if errors.As(err, &de) {
		return de.Type == ErrorTypeParse
	}

	return false
}

// Code returns the code of the outermost DocError in err's chain, or "".
func Code(err error) string {
	var de *DocError
	if errors.As(err, &de) {
		return de.Code
	}

	return ""
}
