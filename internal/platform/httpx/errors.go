package httpx

import (
	"errors"
	"net/http"
)

// Error is a domain error that carries its problem response. Handlers return
// or wrap one and let RespondError render it.
type Error struct {
	Status int
	Kind   string
	Title  string
	Detail string
}

// NewError builds an Error. kind may be empty for untyped problems.
func NewError(status int, kind, title, detail string) *Error {
	return &Error{Status: status, Kind: kind, Title: title, Detail: detail}
}

func (e *Error) Error() string { return e.Detail }

// Shared errors for cases with no domain-specific problem type.
var (
	ErrNotFound     = NewError(http.StatusNotFound, "", "Not Found", "resource not found")
	ErrValidation   = NewError(http.StatusBadRequest, "", "Validation Failed", "validation failed")
	ErrForbidden    = NewError(http.StatusForbidden, "", "Forbidden", "forbidden")
	ErrUnauthorized = NewError(http.StatusUnauthorized, "", "Unauthorized", "sign in required")
)

// IsProblem reports whether err maps to a client-facing problem response.
func IsProblem(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// RespondError renders err as RFC7807. A wrapped Error keeps the full wrapped
// message as detail; anything else is an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	TypedProblem(w, e.Status, e.Kind, e.Title, err.Error())
}
