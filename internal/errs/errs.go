// Package errs holds the error taxonomy shared by the repository, service
// and handler layers. Each failure is tagged with one sentinel kind so the
// HTTP layer can pick a status code with errors.Is, while the message
// stays human readable.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation               = errors.New("validation error")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("forbidden")
	ErrNotFound                 = errors.New("not found")
	ErrConflict                 = errors.New("conflict")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrInvalidRange             = errors.New("invalid date range")
	ErrInvalidTransition        = errors.New("invalid status transition")
)

// Error carries a kind from the list above and the message shown to clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// E tags msg with kind.
func E(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Ef is E with formatting.
func Ef(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status code of its kind. Unknown errors
// are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrInsufficientAvailability):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Message returns the text that may be sent to a client. Internal errors
// never leak their detail.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "Server Error"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	// bare sentinel, possibly wrapped by a lower layer
	for _, kind := range []error{
		ErrInvalidCredentials, ErrInsufficientAvailability, ErrInvalidRange,
		ErrInvalidTransition, ErrValidation, ErrUnauthorized, ErrForbidden,
		ErrNotFound, ErrConflict,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
