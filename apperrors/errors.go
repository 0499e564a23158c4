package apperrors

import (
	"errors"
	"fmt"
)

var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// AppError carries a machine code and a message that is safe to show to callers.
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *AppError) Code() string    { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.err }

func NewAppError(code, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

func Validation(message string) *AppError   { return NewAppError(CodeValidation, message, nil) }
func NotFound(message string) *AppError     { return NewAppError(CodeNotFound, message, nil) }
func Forbidden(message string) *AppError    { return NewAppError(CodeForbidden, message, nil) }
func Conflict(message string) *AppError     { return NewAppError(CodeConflict, message, nil) }
func InvalidState(message string) *AppError { return NewAppError(CodeInvalidState, message, nil) }

func Unauthenticated(message string) *AppError {
	return NewAppError(CodeUnauthenticated, message, nil)
}

// Upstream wraps a persistence or provider failure. The wrapped error is kept
// for logs only.
func Upstream(message string, err error) *AppError {
	return NewAppError(CodeUpstream, message, err)
}

// Wrap keeps the code of an existing AppError and treats anything else as upstream.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}
	return Upstream(message, err)
}

// CodeOf returns the code of err, or CodeUpstream for foreign errors.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return CodeUpstream
}

// PublicMessage is the text returned to API callers. Foreign errors never leak.
func PublicMessage(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Message()
	}
	return "internal server error"
}

func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}
