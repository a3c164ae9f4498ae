// Package errors provides structured error types used across the application.
// We prefer these over raw fmt.Errorf strings to enable reliable checks with
// errors.Is / errors.As and to carry minimal context about the failure.
package errors

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a requested entity is absent. Never retried.
type NotFoundError struct {
	Op     string // where it happened (package.Function)
	Entity string // "advertisement", "category", "moderation", "user"
	ID     string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.ID != "" {
		return fmt.Sprintf("not found: %s: %s %s", e.Op, e.Entity, e.ID)
	}
	return fmt.Sprintf("not found: %s: %s", e.Op, e.Entity)
}

func NewNotFound(op, entity, id string) error {
	return &NotFoundError{Op: op, Entity: entity, ID: id}
}

// AlreadyExistsError indicates a uniqueness violation detected before insert.
type AlreadyExistsError struct {
	Op     string
	Entity string
	Msg    string
}

func (e *AlreadyExistsError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("already exists: %s: %s: %s", e.Op, e.Entity, e.Msg)
}

func NewAlreadyExists(op, entity, msg string) error {
	return &AlreadyExistsError{Op: op, Entity: entity, Msg: msg}
}

// StatusConflictError indicates an operation attempted while the
// advertisement is not in a state that permits it.
type StatusConflictError struct {
	Op     string
	Status string // current status that blocked the operation
	Msg    string
}

func (e *StatusConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("status conflict: %s: %s (status %s)", e.Op, e.Msg, e.Status)
}

func NewStatusConflict(op, status, msg string) error {
	return &StatusConflictError{Op: op, Status: status, Msg: msg}
}

// AccessDeniedError indicates the actor lacks ownership or role for the
// requested operation.
type AccessDeniedError struct {
	Op  string
	Msg string
}

func (e *AccessDeniedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("access denied: %s: %s", e.Op, e.Msg)
}

func NewAccessDenied(op, msg string) error {
	return &AccessDeniedError{Op: op, Msg: msg}
}

// ValidationError indicates invalid input rejected at construction time,
// before any persistence attempt.
type ValidationError struct {
	Op  string
	Msg string // human friendly message (no PII)
	Err error  // underlying cause (optional)
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// StorageError represents persistence provider failures. Always wraps the
// underlying cause; never silently swallowed.
type StorageError struct {
	Op  string
	Msg string
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("storage: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("storage: %s: %s", e.Op, e.Msg)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorage(op, msg string, err error) error {
	return &StorageError{Op: op, Msg: msg, Err: err}
}

// ExternalError represents failures in external collaborators (broker,
// object storage, AI advisor).
type ExternalError struct {
	Op     string
	System string // e.g. "kafka" / "minio" / "openai"
	Msg    string
	Err    error
}

func (e *ExternalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	sys := e.System
	if sys == "" {
		sys = "external"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", sys, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", sys, e.Op, e.Msg)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func NewExternal(op, system, msg string, err error) error {
	return &ExternalError{Op: op, System: system, Msg: msg, Err: err}
}

// IsKind helpers: allow callers to check error kind without type assertions.
// Example: if errors.Is(err, errors.ErrNotFound) { ... }
var (
	ErrNotFound       = &NotFoundError{}
	ErrAlreadyExists  = &AlreadyExistsError{}
	ErrStatusConflict = &StatusConflictError{}
	ErrAccessDenied   = &AccessDeniedError{}
	ErrValidation     = &ValidationError{}
	ErrStorage        = &StorageError{}
	ErrExternal       = &ExternalError{}
)

// Is enables errors.Is(err, ErrNotFound) via errors.As semantics.
// We delegate to errors.As with the zero-value pointer of each type.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return errors.Is(err, target)
	}
	switch target.(type) {
	case *NotFoundError:
		var t *NotFoundError
		return errors.As(err, &t)
	case *AlreadyExistsError:
		var t *AlreadyExistsError
		return errors.As(err, &t)
	case *StatusConflictError:
		var t *StatusConflictError
		return errors.As(err, &t)
	case *AccessDeniedError:
		var t *AccessDeniedError
		return errors.As(err, &t)
	case *ValidationError:
		var t *ValidationError
		return errors.As(err, &t)
	case *StorageError:
		var t *StorageError
		return errors.As(err, &t)
	case *ExternalError:
		var t *ExternalError
		return errors.As(err, &t)
	default:
		return errors.Is(err, target)
	}
}
