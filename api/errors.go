// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-nic.
// Only conditions a caller can act on are modeled as errors; hardware and
// configuration mismatches panic at the call site instead.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors used across the library.
var (
	// ErrNotSupported is returned by capability primitives the underlying
	// driver does not implement. Callers fall back or log, never fail.
	ErrNotSupported = errors.New("operation not supported")

	// ErrAlreadyExists reports a name collision in the capability layer's
	// global pool namespace.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrPoolBusy reports that a pool still has buffers outstanding and
	// cannot be released yet.
	ErrPoolBusy = errors.New("pool has outstanding buffers")

	// ErrPortOwned reports that another entity already owns the port.
	ErrPortOwned = errors.New("port owned by another entity")
)

// ErrorCode classifies recoverable error conditions.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInitFailed
	ErrCodeAlreadyInitialized
	ErrCodeNotSupported
	ErrCodeResourceExhausted
	ErrCodeInternal
)

// Error is a structured error with a code and optional context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err. Sentinels classify to their
// matching code; other foreign errors report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case err == nil:
		return ErrCodeOK
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	case errors.Is(err, ErrPoolBusy):
		return ErrCodeResourceExhausted
	}
	return ErrCodeInternal
}
