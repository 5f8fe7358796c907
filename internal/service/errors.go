// Package service implements the booking, verification, query and fleet
// operations of the API on top of the repository stores. Every error it
// returns is an *Error carrying one of the Kind values below; handlers map
// the kind to an HTTP status in one place.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindDuplicate    Kind = "duplicate"
	KindInternal     Kind = "internal"
)

// Error is the single error type returned by services. Details is optional
// structured context echoed to the client, such as the offending ticket on
// a verification conflict.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, details any) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}

func Validation(msg string, details any) *Error { return newError(KindValidation, msg, details) }
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }
func Conflict(msg string, details any) *Error { return newError(KindConflict, msg, details) }
func Duplicate(msg string) *Error { return newError(KindDuplicate, msg, nil) }

// Internal wraps an unexpected store or infrastructure failure. The
// message shown to clients never contains err.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors that are not
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
