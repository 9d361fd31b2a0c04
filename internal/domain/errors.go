package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrPersistence  = errors.New("persistence failed")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (version, document, suggestion)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// PersistenceError indicates a version save or restore failed at the storage
// layer. The in-memory draft is left untouched by the caller so no data is
// silently lost; retry is caller-initiated.
type PersistenceError struct {
	Op      string // operation that failed (append, restore, list)
	Message string
	Cause   error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying storage error
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// StatusCode implements the HTTPError interface
func (e *PersistenceError) StatusCode() int {
	return http.StatusInternalServerError
}

// Is allows errors.Is() to match against ErrPersistence
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// MalformedDeltaError indicates a streamed delta was missing required fields
// for its kind or carried an unknown kind. Malformed deltas are dropped with
// a diagnostic; the session continues.
type MalformedDeltaError struct {
	Kind    string // the delta kind as received (may be unknown)
	Message string
}

// Error implements the error interface
func (e *MalformedDeltaError) Error() string {
	return fmt.Sprintf("malformed delta %q: %s", e.Kind, e.Message)
}
