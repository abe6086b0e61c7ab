package errors

import (
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Toolkit error codes. StatusCode carries the transport mapping applied at
// the boundary: validation 400, safety blocks 403, throttle 429, recoverable
// command failures 422, everything else 500.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeSchemaParity        = "SCHEMA_PARITY_VIOLATION"
	ErrCodeSafetyBlock         = "SAFETY_BLOCK"
	ErrCodeConcurrencyLimit    = "CONCURRENCY_LIMIT"
	ErrCodeHygieneViolation    = "HYGIENE_VIOLATION"
	ErrCodeCommandFailed       = "COMMAND_EXECUTION_FAILED"
	ErrCodeResetFailed         = "RESET_FAILED"
	ErrCodeNoCampaigns         = "NO_CAMPAIGNS"
	ErrCodeMissingConfirmation = "MISSING_CONFIRMATION"
	ErrCodeVerificationFailed  = "VERIFICATION_FAILED"
	ErrCodeUnexpected          = "UNEXPECTED_ERROR"
	ErrCodeDatabase            = "DATABASE_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// From converts any error to an AppError, wrapping unknown errors as
// COMMAND_EXECUTION_FAILED so expected failures keep their codes
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	if app, ok := err.(*AppError); ok {
		return app
	}
	return CommandFailed("command execution failed", err)
}

// Common error constructors

// Validation creates a validation error
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest)
}

// ValidationWithDetails creates a validation error with field details
func ValidationWithDetails(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// SchemaParity creates a schema-parity preflight error
func SchemaParity(message string, err error) *AppError {
	return Wrap(err, ErrCodeSchemaParity, message, http.StatusForbidden)
}

// SafetyBlock creates a generic safety-gate block error
func SafetyBlock(message string) *AppError {
	return New(ErrCodeSafetyBlock, message, http.StatusForbidden)
}

// ConcurrencyLimit creates a throttle rejection error
func ConcurrencyLimit(message string) *AppError {
	return New(ErrCodeConcurrencyLimit, message, http.StatusTooManyRequests)
}

// HygieneViolation creates an error for writes against tenants holding real data
func HygieneViolation(message string) *AppError {
	return New(ErrCodeHygieneViolation, message, http.StatusForbidden)
}

// CommandFailed creates a recoverable command execution error
func CommandFailed(message string, err error) *AppError {
	return Wrap(err, ErrCodeCommandFailed, message, http.StatusUnprocessableEntity)
}

// ResetFailed creates a tenant reset error
func ResetFailed(message string, err error) *AppError {
	return Wrap(err, ErrCodeResetFailed, message, http.StatusUnprocessableEntity)
}

// NoCampaigns creates an error for scenarios requiring existing campaigns
func NoCampaigns(tenantID string) *AppError {
	return New(ErrCodeNoCampaigns, fmt.Sprintf("tenant %s has no campaigns to evaluate", tenantID), http.StatusUnprocessableEntity)
}

// MissingConfirmation creates an error for destructive actions lacking a valid token
func MissingConfirmation(message string) *AppError {
	return New(ErrCodeMissingConfirmation, message, http.StatusForbidden)
}

// VerificationFailed creates a hybrid-verification mismatch error
func VerificationFailed(message string) *AppError {
	return New(ErrCodeVerificationFailed, message, http.StatusUnprocessableEntity)
}

// Unexpected wraps a truly unexpected fault caught at the pipeline boundary
func Unexpected(message string, err error) *AppError {
	return Wrap(err, ErrCodeUnexpected, message, http.StatusInternalServerError)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}
