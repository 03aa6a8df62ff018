// Package apperr defines the error kinds shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrRange      = errors.New("start date is after end date")
	ErrPastDate   = errors.New("start date is in the past")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

// Error is a classified failure. Kind is one of the sentinels above and
// Conflict, when set, is the object the request collided with.
type Error struct {
	Kind     error
	Message  string
	Conflict any
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return newf(ErrValidation, format, args...) }

func Range(format string, args ...any) error { return newf(ErrRange, format, args...) }

func PastDate(format string, args ...any) error { return newf(ErrPastDate, format, args...) }

func NotFound(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// Conflict reports a collision with an existing object, which is surfaced to the caller.
func Conflict(conflict any, format string, args ...any) error {
	e := newf(ErrConflict, format, args...)
	e.Conflict = conflict
	return e
}

// Storage wraps a persistence failure.
func Storage(err error, format string, args ...any) error {
	e := newf(ErrStorage, format, args...)
	e.Err = err
	return e
}

// Message returns the human readable part of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ConflictOf returns the conflicting object carried by err, if any.
func ConflictOf(err error) any {
	var e *Error
	if errors.As(err, &e) {
		return e.Conflict
	}
	return nil
}
