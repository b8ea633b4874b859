// Package apperr defines the failure kinds shared by every service and the
// helpers that carry them across gRPC boundaries.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindBusinessRule Kind = "BUSINESS_RULE_VIOLATION"
	KindUnavailable  Kind = "SERVICE_UNAVAILABLE"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindInternal     Kind = "INTERNAL"
)

// Error is a classified failure. Message is what the caller sees; Err keeps
// the underlying cause for logs and errors.Is checks.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

func BusinessRule(format string, args ...any) error {
	return newError(KindBusinessRule, nil, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

// Unavailable builds a ServiceUnavailable failure. The cause is kept for
// logging but never shows up in the message.
func Unavailable(cause error, format string, args ...any) error {
	return newError(KindUnavailable, cause, format, args...)
}

func Internal(cause error, format string, args ...any) error {
	return newError(KindInternal, cause, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsClientError reports failures caused by the request itself rather than by
// an unhealthy dependency.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindBusinessRule, KindValidation:
		return true
	}
	return false
}
