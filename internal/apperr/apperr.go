// Package apperr carries the error taxonomy shared by all services: every
// business-rule violation is tagged with a Kind and a stable machine-readable
// code so handlers can map it to an HTTP status without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalid
	KindTransient
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindTransient:
		return "transient"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Error is a kind-tagged error. Code is stable across releases; Msg is for
// humans only.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func Wrap(kind Kind, code, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg, Err: err}
}

func NotFound(code, msg string) *Error        { return New(KindNotFound, code, msg) }
func Forbidden(code, msg string) *Error       { return New(KindForbidden, code, msg) }
func Conflict(code, msg string) *Error        { return New(KindConflict, code, msg) }
func Invalid(code, msg string) *Error         { return New(KindInvalid, code, msg) }
func Transient(code string, err error) *Error { return Wrap(KindTransient, code, "temporary failure", err) }
func Unauthenticated(msg string) *Error       { return New(KindUnauthenticated, "unauthenticated", msg) }

// KindOf extracts the Kind from err, or KindUnknown for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf extracts the stable code from err, or "internal" for untagged errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether the caller may retry the operation.
func IsRetryable(err error) bool {
	return IsKind(err, KindTransient)
}

// HTTPStatus maps an error to the status the API surfaces for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
