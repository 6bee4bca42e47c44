package services

import (
	"errors"
	"net/http"

	"quizone/storage"
)

// Error codes returned to clients in the errorCode field.
const (
	CodeOK                 = 0
	CodeNotFound           = 1
	CodeAccessDenied       = 2
	CodeUploadFailed       = 4
	CodeInvalidFields      = 5
	CodeInternal           = 6
	CodeForbidden          = 7
	CodeClass              = 9
	CodePackLink           = 10
	CodeAlreadySubmitted   = 11
	CodeDuplicateUser      = 12
	CodeInvalidCredentials = 13
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// ErrNoExam is returned when a question pack has no exam yet. It is not a failure.
var ErrNoExam = errors.New("no exam found for this question pack")

// Error is the error type every service returns for expected failures.
type Error struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		if e.Code == CodeDuplicateUser {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Invalid(code int, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeInvalidCredentials, Message: message}
}

func Forbidden(code int, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func NotFound(code int, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(code int, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// lookupErr converts a store lookup failure into a service error.
func lookupErr(err error, code int, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return NotFound(code, message)
	}
	return Internal(err, "An error occurred while fetching data")
}

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
