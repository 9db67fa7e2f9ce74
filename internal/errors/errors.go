package errors

import (
	"errors"
	"fmt"
)

// RetrievalError is the structured error type for lawrag.
// It provides context for error handling, logging, and degradation decisions.
type RetrievalError struct {
	// Code is the unique error code (e.g., "ERR_302_VECTOR_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Corpus, Service, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with RetrievalError.
func (e *RetrievalError) Is(target error) bool {
	if t, ok := target.(*RetrievalError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new RetrievalError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *RetrievalError {
	return &RetrievalError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a RetrievalError from an existing error.
// The error's message becomes the RetrievalError message.
func Wrap(code string, err error) *RetrievalError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IndexBuildError creates a fatal corpus/index build error.
func IndexBuildError(message string, cause error) *RetrievalError {
	return New(ErrCodeCorpusEmpty, message, cause)
}

// InvalidArgument creates an invalid caller argument error.
func InvalidArgument(message string) *RetrievalError {
	return New(ErrCodeInvalidTopK, message, nil)
}

// RetrievalUnavailable creates an external service failure error.
func RetrievalUnavailable(message string, cause error) *RetrievalError {
	return New(ErrCodeVectorUnavailable, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *RetrievalError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a RetrievalError with the Retryable flag set.
func IsRetryable(err error) bool {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort startup.
func IsFatal(err error) bool {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a RetrievalError.
// Returns empty string if not a RetrievalError.
func GetCode(err error) string {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
