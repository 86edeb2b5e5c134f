package core

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the transport layer can map it to a
// status code without string matching.
type Kind int

const (
	// KindInternal covers storage and other unexpected failures. Reported
	// to callers as a generic server error; details stay in the logs.
	KindInternal Kind = iota
	// KindValidation is bad or missing input, an unsafe identifier, or an
	// undecodable spreadsheet. Always raised before any mutation.
	KindValidation
	// KindForbidden is a role check failure.
	KindForbidden
	// KindConflict is a duplicate application or identifier collision.
	KindConflict
	// KindNotFound is a missing company, table, or empty export join.
	KindNotFound
)

// Error is a domain error with a classification and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified domain error.
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Errorf builds a classified domain error with a formatted message.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or KindInternal when err is
// not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// UserMessage is the sanitized message shown to callers. Internal errors
// never leak their technical detail.
func UserMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindInternal {
		return de.Msg
	}
	return "an unexpected error occurred, please try again"
}

// Code returns a short machine-readable code for the error kind,
// included in error responses for support reference.
func Code(err error) string {
	switch KindOf(err) {
	case KindValidation:
		return "VALIDATION"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}
