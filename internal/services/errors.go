package services

import (
	"errors"
	"strings"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	ErrValidation           = errors.New("form is not valid")
	ErrFormClosed           = errors.New("form is closed")
	ErrFormExpired          = errors.New("form has expired")
	ErrResponseLimitReached = errors.New("response limit reached")
	ErrRequiredUnanswered   = errors.New("required question unanswered")
	ErrTokenExpired         = errors.New("token expired")
)

func wrapError(code ErrorCode, msg string, err error) error {
	return &ServiceError{Code: code, Message: msg, Err: err}
}

// ValidationError carries the ordered messages produced by ValidateForm.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Errors, " ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
