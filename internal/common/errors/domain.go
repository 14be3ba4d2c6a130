package commonerrors

import (
	"errors"
	"fmt"
)

type ErrorCategory string

const (
	CategoryValidation   ErrorCategory = "VALIDATION"
	CategoryConflict     ErrorCategory = "CONFLICT"
	CategoryUnauthorized ErrorCategory = "UNAUTHORIZED"
	CategoryForbidden    ErrorCategory = "FORBIDDEN"
	CategoryNotFound     ErrorCategory = "NOT_FOUND"
	CategoryInternal     ErrorCategory = "INTERNAL"
	CategoryExternal     ErrorCategory = "EXTERNAL"
)

// Status codes carried in response bodies.
const (
	StatusSuccess            = 0
	StatusClientError        = 400
	StatusUnauthorized       = 401
	StatusForbidden          = 403
	StatusNotFound           = 404
	StatusInternal           = 500
	StatusBackendUnavailable = 502
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	Status() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) Status() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Unwrap() error {
	return e.cause
}

// Is matches on code so that errors derived through WithCause still compare
// equal to their sentinel.
func (e *domainError) Is(target error) bool {
	t, ok := target.(*domainError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		cause:    cause,
	}
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// StatusOf returns the body status for err. Anything that is not a
// DomainError is reported as internal.
func StatusOf(err error) (int, string) {
	if err == nil {
		return StatusSuccess, "Success"
	}
	if de, ok := AsDomainError(err); ok {
		return de.Status(), de.Message()
	}
	return StatusInternal, ErrInternal.Message()
}

var (
	ErrClientInput = NewDomainError(
		"CLIENT_INPUT",
		CategoryValidation,
		StatusClientError,
		"Bad Request",
	)

	ErrUnauthorized = NewDomainError(
		"UNAUTHORIZED",
		CategoryUnauthorized,
		StatusUnauthorized,
		"Unauthorized",
	)

	ErrForbidden = NewDomainError(
		"FORBIDDEN",
		CategoryForbidden,
		StatusForbidden,
		"Forbidden",
	)

	ErrUsernameOccupied = NewDomainError(
		"USERNAME_OCCUPIED",
		CategoryConflict,
		StatusForbidden,
		"The username has been occupied.",
	)

	ErrNotFound = NewDomainError(
		"NOT_FOUND",
		CategoryNotFound,
		StatusNotFound,
		"Not Found",
	)

	ErrInternal = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		StatusInternal,
		"Internal Server Error",
	)

	ErrBackendUnavailable = NewDomainError(
		"BACKEND_UNAVAILABLE",
		CategoryExternal,
		StatusBackendUnavailable,
		"Bad Gateway",
	)

	ErrCircuitOpen = NewDomainError(
		"CIRCUIT_OPEN",
		CategoryExternal,
		StatusBackendUnavailable,
		"Bad Gateway",
	)
)
