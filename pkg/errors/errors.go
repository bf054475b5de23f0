package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeProcessing   ErrorType = "processing"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeRateLimited  ErrorType = "rate_limited"
)

// ErrorCode identifies the precise failure kind inside a category.
type ErrorCode string

const (
	CodeMissingUpload        ErrorCode = "missing_upload"
	CodeMissingParameter     ErrorCode = "missing_parameter"
	CodeInvalidParameter     ErrorCode = "invalid_parameter"
	CodeTransformationFailed ErrorCode = "transformation_failed"
	CodeCleanupFailed        ErrorCode = "cleanup_failed"
	CodeUnexpectedFailure    ErrorCode = "unexpected_failure"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"error"`
	Code       ErrorCode `json:"code,omitempty"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Details:    detail,
		StatusCode: http.StatusBadRequest,
	}
}

// NewMissingUploadError reports that no file content was supplied.
func NewMissingUploadError() *AppError {
	err := NewValidationError("A PDF file is required")
	err.Code = CodeMissingUpload
	return err
}

// NewMissingParameterError reports an absent or blank required parameter.
func NewMissingParameterError(name string) *AppError {
	err := NewValidationError("Missing required parameter: "+name, name)
	err.Code = CodeMissingParameter
	return err
}

// NewInvalidParameterError reports a parameter that is present but unusable.
func NewInvalidParameterError(name, reason string) *AppError {
	err := NewValidationError("Invalid parameter: "+name, reason)
	err.Code = CodeInvalidParameter
	return err
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProcessing,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewTransformationError wraps any failure raised by a transformation
// capability. The cause text is kept as details only.
func NewTransformationError(message string, cause error) *AppError {
	err := NewProcessingError(message, cause)
	err.Code = CodeTransformationFailed
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewCleanupError describes a scratch workspace that could not be removed.
// It is a diagnostic and is never returned in place of a primary outcome.
func NewCleanupError(dir string, cause error) *AppError {
	err := NewInternalError("Failed to remove scratch workspace", cause)
	err.Code = CodeCleanupFailed
	err.Details = dir
	return err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewRateLimitedError creates a new rate limit error
func NewRateLimitedError() *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Message:    "Rate limit exceeded",
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewUnexpectedError is the catch-all for failures outside the other kinds,
// such as a full disk while staging the upload.
func NewUnexpectedError(message string, cause error) *AppError {
	err := NewInternalError(message, cause)
	err.Code = CodeUnexpectedFailure
	return err
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// IsCode checks if the error carries a specific failure code
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
