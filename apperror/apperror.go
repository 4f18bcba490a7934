// Package apperror defines the error kinds shared by stores, services and the
// HTTP layer.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of where it happened.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to callers; Err is
// the underlying cause and is only exposed outside production.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func BadRequest(msg string, err error) *Error   { return newError(KindBadRequest, msg, err) }
func Unauthorized(msg string, err error) *Error { return newError(KindUnauthorized, msg, err) }
func Forbidden(msg string, err error) *Error    { return newError(KindForbidden, msg, err) }
func NotFound(msg string, err error) *Error     { return newError(KindNotFound, msg, err) }
func Conflict(msg string, err error) *Error     { return newError(KindConflict, msg, err) }
func Internal(msg string, err error) *Error     { return newError(KindInternal, msg, err) }

// Invalid builds a BadRequest carrying per-field messages.
func Invalid(msg string, details map[string]string, err error) *Error {
	e := newError(KindBadRequest, msg, err)
	e.Details = details
	return e
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
