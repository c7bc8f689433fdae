// Package common provides shared constants, types, and utilities
// used across the WireGuard GUI application.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for profile operations.
// These can be checked with errors.Is() for proper error handling.
var (
	ErrInvalidName   = errors.New("name must only contain alphanumeric characters")
	ErrAlreadyExists = errors.New("profile already exists")
	ErrNotFound      = errors.New("profile does not exist")
)

// ExecutionError reports a nonzero exit of the toggle command.
type ExecutionError struct {
	Profile    string
	Diagnostic string
}

func (e *ExecutionError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("toggle command failed for %s", e.Profile)
	}
	return e.Diagnostic
}

// IoError wraps a filesystem failure with the operation and path involved.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// ValidationError reports content or file checks that failed on import.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewIoError returns nil when err is nil.
func NewIoError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Op: op, Path: path, Err: err}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
