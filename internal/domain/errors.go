package domain

import "errors"

// Domain errors
var (
	ErrOperationNotFound = errors.New("operation not found")
	ErrInvalidToken      = errors.New("invalid token")
	ErrEmptyOutput       = errors.New("transformation produced no output")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
