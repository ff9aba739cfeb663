package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// SignalError is a failure the client is told about by signal. Err keeps the
// underlying cause for logging; it is never sent to the client.
type SignalError struct {
	Signal Signal
	Err    error
}

func (e *SignalError) Error() string {
	if e.Err == nil {
		return string(e.Signal)
	}
	return fmt.Sprintf("%s: %v", e.Signal, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// SignalOf returns the signal carried by err, or "" if it carries none.
func SignalOf(err error) Signal {
	var se *SignalError
	if errors.As(err, &se) {
		return se.Signal
	}
	return ""
}

func signalError(signal Signal, err error) error {
	return &SignalError{Signal: signal, Err: err}
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
