// Package pagerr defines the error taxonomy for the pagination engine.
// DefinitionError is raised once at schema build time, ValidationError per
// request before any query executes, and ExecutionError wraps data-source
// failures after a round-trip has been attempted.
package pagerr

import (
	"errors"
	"fmt"
)

// DefinitionError indicates an invalid schema-build-time declaration.
// It is fatal and aborts schema compilation.
type DefinitionError struct {
	msg string
}

func (e *DefinitionError) Error() string { return e.msg }

// Definitionf creates a DefinitionError with a formatted message.
func Definitionf(format string, args ...interface{}) error {
	return &DefinitionError{msg: fmt.Sprintf(format, args...)}
}

// ValidationError indicates invalid request arguments. It surfaces as a
// field-level error and does not abort sibling field resolution.
type ValidationError struct {
	msg   string
	cause error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Validationf creates a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ValidationWrap creates a ValidationError with a cause attached.
func ValidationWrap(err error, format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...), cause: err}
}

// ExecutionError wraps a data-source failure unchanged. The engine does not
// retry; retry policy belongs to the data-source client.
type ExecutionError struct {
	cause error
}

func (e *ExecutionError) Error() string { return "query execution failed: " + e.cause.Error() }

func (e *ExecutionError) Unwrap() error { return e.cause }

// Execution wraps err as an ExecutionError. Returns nil for a nil err, and
// leaves errors that already carry a taxonomy type untouched.
func Execution(err error) error {
	if err == nil {
		return nil
	}
	var exec *ExecutionError
	if errors.As(err, &exec) {
		return err
	}
	return &ExecutionError{cause: err}
}

// IsDefinition reports whether err is a DefinitionError.
func IsDefinition(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsExecution reports whether err is an ExecutionError.
func IsExecution(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
