package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error per the engine taxonomy.
type Kind string

const (
	KindInput      Kind = "input"
	KindValidation Kind = "validation"
	KindSolver     Kind = "solver"
	KindInternal   Kind = "internal"
)

// Error represents a typed domain error carrying the failing phase when known.
type Error struct {
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Phase   string `json:"phase,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInput      = New("INPUT_ERROR", KindInput, "invalid input document")
	ErrValidation = New("VALIDATION_ERROR", KindValidation, "validation failed")
	ErrSolver     = New("SOLVER_FAILURE", KindSolver, "solver returned no usable solution")
	ErrInternal   = New("INTERNAL_ERROR", KindInternal, "internal invariant violated")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Kind, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// InPhase returns a copy annotated with the pipeline phase that failed.
func InPhase(err *Error, phase string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Phase = phase
	return &clone
}
