package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller. The zero value is Internal.
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	Unauthorized
	Forbidden
	NotFound
	Conflict
	InvalidTransition
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidTransition:
		return "invalid_transition"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code the adaptor layer answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case InvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Fields carries per-field validation messages keyed by JSON name.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewInvalidInput(format string, args ...any) *Error {
	return New(InvalidInput, format, args...)
}

// NewValidation reports request fields that failed validation.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: InvalidInput, Message: "validation failed", Fields: fields}
}

func NewUnauthorized(format string, args ...any) *Error {
	return New(Unauthorized, format, args...)
}

func NewForbidden(format string, args ...any) *Error {
	return New(Forbidden, format, args...)
}

func NewNotFound(resource, id string) *Error {
	return New(NotFound, "%s %s not found", resource, id)
}

func NewConflict(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

func NewInvalidTransition(from, to string) *Error {
	return New(InvalidTransition, "cannot transition booking from %s to %s", from, to)
}

func NewInternal(err error, format string, args ...any) *Error {
	return Wrap(Internal, err, format, args...)
}

// KindOf reports the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// FieldsOf returns the validation fields of err, if any.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
