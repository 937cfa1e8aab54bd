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

	// Resolution errors
	ErrResolve          ErrorCode = "RESOLVE"
	ErrPluginNotFound   ErrorCode = "PLUGIN_NOT_FOUND"
	ErrPluginExists     ErrorCode = "PLUGIN_EXISTS"
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"

	// Template errors
	ErrTemplateParse  ErrorCode = "TEMPLATE_PARSE"
	ErrTemplateRender ErrorCode = "TEMPLATE_RENDER"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirAccess    ErrorCode = "DIR_ACCESS"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// PlugmanError represents a structured error with code and details
type PlugmanError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PlugmanError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PlugmanError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PlugmanError) Is(target error) bool {
	var targetErr *PlugmanError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PlugmanError with the given code and message
func New(code ErrorCode, message string) *PlugmanError {
	return &PlugmanError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PlugmanError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PlugmanError {
	return &PlugmanError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PlugmanError
func Wrap(err error, code ErrorCode, message string) *PlugmanError {
	if err == nil {
		return nil
	}
	return &PlugmanError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PlugmanError {
	if err == nil {
		return nil
	}
	return &PlugmanError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PlugmanError) WithDetail(key string, value interface{}) *PlugmanError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var perr *PlugmanError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PlugmanError
func GetErrorCode(err error) ErrorCode {
	var perr *PlugmanError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrUnknown
}
