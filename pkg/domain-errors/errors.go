// Package domainerrors defines the coded error type shared by every service.
// Stores return sentinel errors; services translate them into these coded
// errors; httputil maps the codes onto HTTP statuses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and logging.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// FieldViolation ties a rule violation to the form field it concerns.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a coded domain error, optionally carrying field violations and a
// wrapped cause.
type Error struct {
	code       Code
	message    string
	violations []FieldViolation
	wrapped    error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{code: code, message: message, wrapped: err}
}

// NewValidation builds a validation error carrying the accumulated field
// violations.
func NewValidation(violations []FieldViolation) *Error {
	return &Error{
		code:       CodeValidation,
		message:    "validation failed",
		violations: violations,
	}
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.wrapped }

func (e *Error) Code() Code { return e.code }

func (e *Error) Message() string { return e.message }

func (e *Error) Violations() []FieldViolation { return e.violations }

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// ViolationsOf extracts the field violations from err, if any.
func ViolationsOf(err error) []FieldViolation {
	var de *Error
	if errors.As(err, &de) {
		return de.violations
	}
	return nil
}
