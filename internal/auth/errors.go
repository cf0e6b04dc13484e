package auth

import (
	"fmt"
	"net/http"
)

// Kind classifies handler failures.
type Kind int

const (
	// KindInternal is never recovered by the handler itself.
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindConflict
	KindInvalidRecord
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindInvalidRecord:
		return "invalid_record"
	default:
		return "internal"
	}
}

// Status is the HTTP status a response of this kind carries.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindInvalidRecord:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure the originating form can show to the user.
type Error struct {
	Kind     Kind
	View     string
	Message  string
	Username string // echoed back into the form
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// formError builds a recoverable Error for view.
func formError(kind Kind, view, username, msg string, cause error) *Error {
	return &Error{Kind: kind, View: view, Message: msg, Username: username, Err: cause}
}
