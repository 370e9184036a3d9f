// Package errors defines the error taxonomy surfaced by the task graph
// engine. Every failure a caller can act on carries one of four codes.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// Code classifies an error for callers.
type Code string

const (
	// CodeNotFound indicates a referenced execution, task, or branch is missing.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidArgument indicates malformed input: bad enum values,
	// self-dependencies, duplicate IDs, empty required fields.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeConflict indicates a duplicate edge or a concurrent write collision.
	CodeConflict Code = "CONFLICT"
	// CodeUnavailable indicates the store could not be reached.
	CodeUnavailable Code = "UNAVAILABLE"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound returns a NOT_FOUND error with a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns an INVALID_ARGUMENT error with a formatted message.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a CONFLICT error with a formatted message.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Unavailable returns an UNAVAILABLE error wrapping the store failure.
func Unavailable(err error, format string, args ...any) *Error {
	return &Error{Code: CodeUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// Wrap attaches a cause to a coded error.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of err, or CodeUnavailable for uncoded errors.
// Uncoded errors only reach callers when the store itself misbehaves.
func CodeOf(err error) Code {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Code
	}
	return CodeUnavailable
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsInvalidArgument reports whether err carries CodeInvalidArgument.
func IsInvalidArgument(err error) bool {
	return hasCode(err, CodeInvalidArgument)
}

// IsConflict reports whether err carries CodeConflict.
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

// IsUnavailable reports whether err carries CodeUnavailable.
func IsUnavailable(err error) bool {
	return hasCode(err, CodeUnavailable)
}

func hasCode(err error, code Code) bool {
	var e *Error
	return stdErrors.As(err, &e) && e.Code == code
}
