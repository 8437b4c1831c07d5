package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every CustomError unwraps to exactly one of these.
var (
	ErrValidation       = errors.New("validation error")
	ErrAuth             = errors.New("authentication error")
	ErrForbidden        = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrExpiredToken     = errors.New("expired token")
	ErrInvalidOperation = errors.New("invalid operation")
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	kind    error
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unwrap exposes the kind so callers can use errors.Is(err, types.ErrConflict).
func (e *CustomError) Unwrap() error {
	return e.kind
}

func newError(kind error, code int, errorType, format string, args ...any) *CustomError {
	return &CustomError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
		kind:    kind,
	}
}

// Validation reports malformed or inconsistent input.
func Validation(errorType, format string, args ...any) *CustomError {
	return newError(ErrValidation, http.StatusBadRequest, errorType, format, args...)
}

// Auth reports a missing or invalid credential.
func Auth(errorType, format string, args ...any) *CustomError {
	return newError(ErrAuth, http.StatusUnauthorized, errorType, format, args...)
}

// Forbidden reports an authenticated caller acting on something it does not own.
func Forbidden(errorType, format string, args ...any) *CustomError {
	return newError(ErrForbidden, http.StatusForbidden, errorType, format, args...)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(errorType, format string, args ...any) *CustomError {
	return newError(ErrNotFound, http.StatusNotFound, errorType, format, args...)
}

// Conflict reports a uniqueness violation.
func Conflict(errorType, format string, args ...any) *CustomError {
	return newError(ErrConflict, http.StatusConflict, errorType, format, args...)
}

// ExpiredToken reports a password-reset token past its validity window.
func ExpiredToken(errorType, format string, args ...any) *CustomError {
	return newError(ErrExpiredToken, http.StatusBadRequest, errorType, format, args...)
}

// InvalidOperation reports a request that can never succeed, such as a self-chat.
func InvalidOperation(errorType, format string, args ...any) *CustomError {
	return newError(ErrInvalidOperation, http.StatusBadRequest, errorType, format, args...)
}
