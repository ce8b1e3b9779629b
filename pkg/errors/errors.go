package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Business logic errors
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrorCodeConflict   ErrorCode = "CONFLICT"

	// Technical errors
	ErrorCodeStore            ErrorCode = "STORE_ERROR"
	ErrorCodeAgentUnreachable ErrorCode = "AGENT_UNREACHABLE"
	ErrorCodeAgent            ErrorCode = "AGENT_ERROR"
	ErrorCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrorCodeInternal         ErrorCode = "INTERNAL_ERROR"

	// Request errors
	ErrorCodeBadRequest  ErrorCode = "BAD_REQUEST"
	ErrorCodeInvalidJSON ErrorCode = "INVALID_JSON"
)

// AppError is the structured error every service operation returns. Callers
// switch on Code instead of probing shapes at runtime.
type AppError struct {
	Code      ErrorCode         `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Cause     error             `json:"-"`
	Timestamp time.Time         `json:"timestamp"`

	// AgentStatus carries the device agent's status code for AGENT_ERROR
	// so the proxy can relay it verbatim.
	AgentStatus int `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ToJSON converts the error to JSON for API responses
func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"error":     e.Message,
		"code":      e.Code,
		"fields":    e.Fields,
		"timestamp": e.Timestamp,
	})
	return data
}

// GetHTTPStatus returns the appropriate HTTP status code for the error
func (e *AppError) GetHTTPStatus() int {
	switch e.Code {
	case ErrorCodeValidation, ErrorCodeBadRequest, ErrorCodeInvalidJSON:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeTimeout:
		return http.StatusRequestTimeout
	case ErrorCodeAgent:
		if e.AgentStatus != 0 {
			return e.AgentStatus
		}
		return http.StatusBadGateway
	case ErrorCodeAgentUnreachable:
		// Transport failures get a fixed fallback status.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap creates a new application error with an underlying cause
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Predefined constructors for the error taxonomy

// ValidationError creates a field-keyed validation error. It never reflects
// a partial write; callers return it before touching the store.
func ValidationError(fields map[string]string) *AppError {
	err := New(ErrorCodeValidation, "validation failed")
	err.Fields = fields
	return err
}

// NotFoundError creates a not found error for the named resource
func NotFoundError(resource string) *AppError {
	return New(ErrorCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// StoreError creates a store error. The cause is logged server-side; the
// message is the only detail surfaced to callers.
func StoreError(message string, cause error) *AppError {
	return Wrap(ErrorCodeStore, message, cause)
}

// AgentUnreachableError creates an error for a device agent that did not
// respond or whose network call failed.
func AgentUnreachableError(cause error) *AppError {
	return Wrap(ErrorCodeAgentUnreachable, fmt.Sprintf("device agent unreachable: %v", cause), cause)
}

// AgentError creates an error relaying a non-success device agent response.
func AgentError(status int, message string) *AppError {
	err := New(ErrorCodeAgent, message)
	err.AgentStatus = status
	return err
}

// BadRequestError creates a bad request error
func BadRequestError(message string) *AppError {
	return New(ErrorCodeBadRequest, message)
}

// InvalidJSONError creates an invalid JSON error
func InvalidJSONError(cause error) *AppError {
	return Wrap(ErrorCodeInvalidJSON, "Invalid JSON format", cause)
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// WrapError wraps a generic error as an internal error, passing AppErrors
// through unchanged.
func WrapError(err error, message string) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Wrap(ErrorCodeInternal, message, err)
}
