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

	// Manifest / configuration errors - fatal to the calling operation
	ErrManifestLoad  ErrorCode = "MANIFEST_LOAD"
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"
	ErrManifestValid ErrorCode = "MANIFEST_INVALID"
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"

	// FileSystem errors
	ErrFileRead  ErrorCode = "FILE_READ"
	ErrFileWrite ErrorCode = "FILE_WRITE"
	ErrFileCopy  ErrorCode = "FILE_COPY"
	ErrDirCreate ErrorCode = "DIR_CREATE"
	ErrPathExpand ErrorCode = "PATH_EXPAND"

	// State store errors
	ErrStateSave ErrorCode = "STATE_SAVE"

	// Sync errors
	ErrSyncConflict ErrorCode = "SYNC_CONFLICT"
	ErrSyncSkipped  ErrorCode = "SYNC_SKIPPED"

	// History journal errors
	ErrHistoryOpen  ErrorCode = "HISTORY_OPEN"
	ErrHistoryWrite ErrorCode = "HISTORY_WRITE"
)

// MirrorError represents a structured error with code and details
type MirrorError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MirrorError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MirrorError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MirrorError) Is(target error) bool {
	var targetErr *MirrorError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MirrorError with the given code and message
func New(code ErrorCode, message string) *MirrorError {
	return &MirrorError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MirrorError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MirrorError {
	return &MirrorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MirrorError
func Wrap(err error, code ErrorCode, message string) *MirrorError {
	if err == nil {
		return nil
	}
	return &MirrorError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MirrorError {
	if err == nil {
		return nil
	}
	return &MirrorError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MirrorError) WithDetail(key string, value interface{}) *MirrorError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var mirrorErr *MirrorError
	if errors.As(err, &mirrorErr) {
		return mirrorErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not
// a MirrorError
func GetErrorCode(err error) ErrorCode {
	var mirrorErr *MirrorError
	if errors.As(err, &mirrorErr) {
		return mirrorErr.Code
	}
	return ErrUnknown
}
