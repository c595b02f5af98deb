package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so transport code can pick a status
// without inspecting message text.
type Kind int

const (
	InvalidArgument Kind = iota
	NotFound
	Unauthorized
	InsufficientStock
	Unavailable
)

func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case InsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func (k Kind) Code() string {
	switch k {
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case NotFound:
		return "NOT_FOUND"
	case Unauthorized:
		return "UNAUTHORIZED"
	case InsufficientStock:
		return "INSUFFICIENT_STOCK"
	default:
		return "UNAVAILABLE"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind carried by err. Anything unclassified (raw store
// errors, context deadlines) counts as Unavailable.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unavailable
}
