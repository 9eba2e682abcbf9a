// Package apperr defines the error taxonomy shared by all services.
// Handlers translate the kind of an error into an HTTP status; services
// never pick status codes themselves.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport-level mapping
type Kind uint8

const (
	// KindValidation marks malformed or invariant-violating input. Raised
	// before any store access, so a rejected operation has zero side effects.
	KindValidation Kind = iota + 1
	// KindNotFound marks a reference to an entity id that does not resolve
	KindNotFound
	// KindAuthorization marks a caller whose role or identity does not
	// satisfy the operation's required capability
	KindAuthorization
	// KindConflict marks a uniqueness violation, e.g. a duplicate signup
	KindConflict
	// KindInfrastructure marks store faults unrelated to application logic
	KindInfrastructure
)

// String returns the metric/log label for the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Error is a classified application error. Field names the offending input
// field for validation errors and is empty otherwise.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a validation error naming the offending field
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound builds a not-found error for the named entity
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Authorization builds an authorization error
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Conflict builds a uniqueness-violation error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Infrastructure wraps a store fault. The wrapped cause is logged, never
// rendered to the caller.
func Infrastructure(err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: "internal error", Err: err}
}

// KindOf returns the kind of err, or 0 when err carries no classification
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsValidation reports whether err is classified as a validation error
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is classified as a not-found error
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsAuthorization reports whether err is classified as an authorization error
func IsAuthorization(err error) bool { return KindOf(err) == KindAuthorization }

// IsConflict reports whether err is classified as a conflict error
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsInfrastructure reports whether err is classified as an infrastructure error
func IsInfrastructure(err error) bool { return KindOf(err) == KindInfrastructure }
