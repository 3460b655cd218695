package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeResource ErrorType = "RESOURCE"
	ErrTypeSchema   ErrorType = "SCHEMA"
	ErrTypeParsing  ErrorType = "PARSING"
	ErrTypeNumeric  ErrorType = "NUMERIC"
	ErrTypeStorage  ErrorType = "STORAGE"
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeRender   ErrorType = "RENDER"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether any error in err's chain is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	if appErr.Type == errType {
		return true
	}
	return IsType(appErr.Cause, errType)
}

// Helper functions for common error types

// NewResourceError creates an error for an input that could not be opened or read
func NewResourceError(message string, cause error) *AppError {
	return NewAppError(ErrTypeResource, message, cause)
}

// NewSchemaError creates an error for a table missing an expected column
func NewSchemaError(message string) *AppError {
	return NewAppError(ErrTypeSchema, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNumericError creates an error for an undefined arithmetic result
func NewNumericError(message string) *AppError {
	return NewAppError(ErrTypeNumeric, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewRenderError creates an error raised while producing a map or chart artifact
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}
