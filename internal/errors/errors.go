// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSessionNotRunning = errors.New("session is not running")
	ErrSessionStopped    = errors.New("session already stopped")
	ErrUnknownTrade      = errors.New("unknown trade id")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrProfileNotFound   = errors.New("settings profile not found")
	ErrJournalClosed     = errors.New("journal is closed")
	ErrAdapterClosed     = errors.New("adapter is closed")
)

// ValidationError reports a settings field that violated its bound. A single
// field violation fails the whole load.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// AdapterError represents a failure at the execution-adapter boundary. It is
// never silently counted as a loss.
type AdapterError struct {
	Adapter string
	Op      string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("adapter error [%s] %s: %v", e.Adapter, e.Op, e.Err)
	}
	return fmt.Sprintf("adapter error [%s] %s", e.Adapter, e.Op)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError creates a new AdapterError.
func NewAdapterError(adapter, op string, err error) *AdapterError {
	return &AdapterError{
		Adapter: adapter,
		Op:      op,
		Err:     err,
	}
}

// JournalError represents an error from the journal store.
type JournalError struct {
	Op  string
	Err error
}

func (e *JournalError) Error() string {
	return fmt.Sprintf("journal error [%s]: %v", e.Op, e.Err)
}

func (e *JournalError) Unwrap() error {
	return e.Err
}

// NewJournalError creates a new JournalError.
func NewJournalError(op string, err error) *JournalError {
	return &JournalError{
		Op:  op,
		Err: err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
