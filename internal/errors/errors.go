package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotInAllowlist indicates the caller's credential is not
	// entitled to join the requested organization/model pairing. Permanent.
	ErrCodeNotInAllowlist ErrorCode = "not_in_allowlist"
	// ErrCodeInvalidCredentials indicates a malformed caller-supplied
	// credential, detected before or during the request. Permanent.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeTransient indicates a failure eligible for retry with backoff
	// (network errors, 5xx responses, malformed-but-retriable responses).
	ErrCodeTransient ErrorCode = "transient"
	// ErrCodeInternal indicates an internal invariant violation.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a tagged application error with a code, message, and optional
// cause. Retriability is data carried by the code, not an exception subclass.
// It supports error wrapping and unwrapping for use with errors.Is and
// errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotInAllowlist creates a new NotInAllowlist error.
func NotInAllowlist(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotInAllowlist,
		Message: message,
	}
}

// NotInAllowlistf creates a new NotInAllowlist error with formatted message.
func NotInAllowlistf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeNotInAllowlist,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidCredentials creates a new InvalidCredentials error.
func InvalidCredentials(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidCredentials,
		Message: message,
	}
}

// InvalidCredentialsf creates a new InvalidCredentials error with formatted message.
func InvalidCredentialsf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidCredentials,
		Message: fmt.Sprintf(format, args...),
	}
}

// Transient creates a new Transient error.
func Transient(message string) *AppError {
	return &AppError{
		Code:    ErrCodeTransient,
		Message: message,
	}
}

// Transientf creates a new Transient error with formatted message.
func Transientf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeTransient,
		Message: fmt.Sprintf(format, args...),
	}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotInAllowlist checks if an error is a NotInAllowlist error.
func IsNotInAllowlist(err error) bool {
	return isCode(err, ErrCodeNotInAllowlist)
}

// IsInvalidCredentials checks if an error is an InvalidCredentials error.
func IsInvalidCredentials(err error) bool {
	return isCode(err, ErrCodeInvalidCredentials)
}

// IsTransient checks if an error is a Transient error.
func IsTransient(err error) bool {
	return isCode(err, ErrCodeTransient)
}

// IsRetriable reports whether an error may be retried with backoff.
// NotInAllowlist and InvalidCredentials are permanent; everything else,
// including errors that carry no code at all, is retriable.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return true
	}
	switch appErr.Code {
	case ErrCodeNotInAllowlist, ErrCodeInvalidCredentials:
		return false
	default:
		return true
	}
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
