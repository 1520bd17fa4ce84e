package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure categories. Every fatal error wraps one of these so main can pick
// an exit code with errors.Is.
var (
	// ErrExtraction covers a corrupt PDF or an undecodable page.
	ErrExtraction = errors.New("pdf extraction failed")
	// ErrAuth covers missing or rejected provider credentials.
	ErrAuth = errors.New("provider authentication failed")
	// ErrModelCall covers a model call that failed after bounded retries.
	ErrModelCall = errors.New("model call failed")
	// ErrInvariant covers a knowledge store whose page sequence is broken.
	// The only recovery is a clean run.
	ErrInvariant = errors.New("knowledge store invariant violated")
	// ErrInvalidInput covers bad CLI arguments or an unusable output path.
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
