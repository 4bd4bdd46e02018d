// Package apperr defines the failure kinds surfaced at the request boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDataAccess   = errors.New("data access failure")
	ErrConflict     = errors.New("conflict")
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports an unknown user, holding or instrument.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// InvalidInput reports a missing or malformed request field.
func InvalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// DataAccess wraps a failure of the underlying store.
func DataAccess(err error, format string, args ...any) error {
	return &Error{Kind: ErrDataAccess, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Conflict reports a concurrent modification detected on write.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status returned to clients.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show to a client. Store failures are
// reduced to their message so driver details stay in the logs.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
