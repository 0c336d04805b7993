// Package errors provides coded domain errors shared by the engine, the
// datastore and the HTTP layer.
//
// Services return typed errors and handlers map them to a status:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
//
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    w.WriteHeader(domainErr.HTTPStatus())
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeFetchFailure      Code = "FETCH_FAILURE"
	CodeDecodeFailure     Code = "DECODE_FAILURE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeConflict          Code = "CONFLICT"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeInternal          Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case CodeDecodeFailure:
		return http.StatusUnprocessableEntity
	case CodeFetchFailure:
		return http.StatusBadGateway
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		// InvalidArgument is a programmer error, not a client one.
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidArgument   = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrUnsupportedFormat = &Error{Code: CodeUnsupportedFormat, Message: "unsupported format"}
	ErrFetchFailure      = &Error{Code: CodeFetchFailure, Message: "fetch failure"}
	ErrDecodeFailure     = &Error{Code: CodeDecodeFailure, Message: "decode failure"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnauthorized      = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden         = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrRateLimited       = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// New creates an error with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf creates an invalid argument error.
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// UnsupportedFormat creates an unsupported format error.
func UnsupportedFormat(msg string) *Error {
	return New(CodeUnsupportedFormat, msg)
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return New(CodeNotFound, msg)
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return New(CodeValidation, msg)
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return New(CodeUnauthorized, msg)
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return New(CodeForbidden, msg)
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return New(CodeRateLimited, msg)
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return New(CodeInternal, msg)
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
