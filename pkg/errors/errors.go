package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Versioning errors
	ErrVersionUnavailable ErrorCode = "VERSION_UNAVAILABLE"
	ErrTemplateMismatch   ErrorCode = "TEMPLATE_MISMATCH"
	ErrInvalidPattern     ErrorCode = "INVALID_PATTERN"

	// Cleanup errors
	ErrCleanupScanFailed ErrorCode = "CLEANUP_SCAN_FAILED"
	ErrDeletionFailed    ErrorCode = "DELETION_FAILED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrLocked     ErrorCode = "LOCKED"
)

// GitHashError represents a structured error with code and details
type GitHashError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GitHashError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GitHashError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a GitHashError carrying the same code.
func (e *GitHashError) Is(target error) bool {
	var targetErr *GitHashError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new GitHashError with the given code and message
func New(code ErrorCode, message string) *GitHashError {
	return &GitHashError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GitHashError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GitHashError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *GitHashError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GitHashError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *GitHashError) WithDetail(key string, value interface{}) *GitHashError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var ghErr *GitHashError
	if errors.As(err, &ghErr) {
		return ghErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a GitHashError
func GetErrorCode(err error) ErrorCode {
	var ghErr *GitHashError
	if errors.As(err, &ghErr) {
		return ghErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a GitHashError
func GetErrorDetails(err error) map[string]interface{} {
	var ghErr *GitHashError
	if errors.As(err, &ghErr) {
		return ghErr.Details
	}
	return nil
}
