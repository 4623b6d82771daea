package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validationf builds a VALIDATION error with a formatted message.
func Validationf(format string, args ...interface{}) *Error {
	return NewError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// Common domain errors.
var (
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrTeamNotFound         = NewError(ErrCodeNotFound, "team not found")
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrSubtaskNotFound      = NewError(ErrCodeNotFound, "subtask not found")
	ErrProjectNotFound      = NewError(ErrCodeNotFound, "project not found")
	ErrNotificationNotFound = NewError(ErrCodeNotFound, "notification not found")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden            = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload       = NewError(ErrCodeValidation, "invalid payload")
	ErrStaleVersion         = NewError(ErrCodeConflict, "entity was modified concurrently")

	ErrTimerAlreadyRunning = NewError(ErrCodeInvalidState, "timer is already running")
	ErrTimerNotRunning     = NewError(ErrCodeInvalidState, "timer is not running")
	ErrTimerNeverStarted   = NewError(ErrCodeInvalidState, "timer was never started")
	ErrTimerBusy           = NewError(ErrCodeInvalidState, "timer is being changed by another request")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
