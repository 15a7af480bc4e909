// Package errors provides centralized error definitions for daylog.
//
// It defines the sentinel errors returned by the sinks and the delivery
// queue, and the [ConfigError] type used for configuration failures that
// must be surfaced to the caller rather than swallowed (for example a log
// directory that cannot be created).
//
// # Usage
//
//	if errors.IsConfigError(err) {
//	    // the file sink could not be set up; this is fatal for the caller
//	}
//
//	var cfgErr *errors.ConfigError
//	if errors.As(err, &cfgErr) {
//	    fmt.Println(cfgErr.Path)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Sink-related sentinel errors
var (
	// ErrSinkClosed indicates a write to a sink that has been closed.
	ErrSinkClosed = New("sink is closed")
	// ErrQueueClosed indicates an operation on a delivery queue after Close.
	ErrQueueClosed = New("delivery queue is closed")
)

// Input-related sentinel errors
var (
	// ErrInvalidLevel indicates a severity name that is not recognized.
	ErrInvalidLevel = New("invalid severity level")
	// ErrEmptyPath indicates that a required path was empty.
	ErrEmptyPath = New("path is empty")
)

// ConfigError describes a configuration failure: a log directory or file
// that could not be created or opened. These are fatal to the calling
// operation.
type ConfigError struct {
	// Op is the operation that failed (e.g. "create log directory").
	Op string
	// Path is the filesystem path involved, if any.
	Path string
	// Err is the underlying cause.
	Err error
}

// NewConfigError creates a ConfigError.
func NewConfigError(op, path string, err error) *ConfigError {
	return &ConfigError{Op: op, Path: path, Err: err}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return As(err, &cfgErr)
}
