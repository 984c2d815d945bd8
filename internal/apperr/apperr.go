// Package apperr defines the error taxonomy shared by services and mapped to
// HTTP status codes at the controller boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	NotFound
	PreconditionFailed
	Conflict
	DataIntegrity
	AccessDenied
	Validation
)

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

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the taxonomy kind of err, or Unknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// HTTPStatus maps an error kind to the status code controllers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case PreconditionFailed:
		return http.StatusPreconditionFailed
	case Conflict:
		return http.StatusConflict
	case AccessDenied:
		return http.StatusForbidden
	case Validation:
		return http.StatusBadRequest
	case DataIntegrity:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
