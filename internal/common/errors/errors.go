// Package errors provides standardized error handling for the ask-ai request pipeline.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Error Taxonomy
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeUpstream      ErrorCode = "UPSTREAM_FAILURE"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// ServiceError represents a structured request failure. Status is the HTTP
// status the handler answers with; for upstream failures it carries the
// upstream status code verbatim.
type ServiceError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Status    int                    `json:"status"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ServiceError[%s]: %s", e.Code, e.Message)
}

// Body returns the wire payload: {"error": <message>} plus any detail fields
// flattened alongside it.
func (e *ServiceError) Body() map[string]interface{} {
	payload := map[string]interface{}{
		"error": e.Message,
	}
	for k, v := range e.Details {
		payload[k] = v
	}
	return payload
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError creates a 400 input validation error.
func NewInvalidInputError(message string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeInvalidInput,
		Message:   message,
		Status:    http.StatusBadRequest,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError creates a 500 error listing the missing settings.
func NewConfigurationError(missing []string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeConfiguration,
		Message:   fmt.Sprintf("Missing environment variable(s): %v", missing),
		Status:    http.StatusInternalServerError,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFailureError creates an error that propagates the upstream status
// code, with the upstream response body attached under "message".
func NewUpstreamFailureError(status int, body string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeUpstream,
		Message:   "AI service request failed",
		Status:    status,
		Details:   map[string]interface{}{"message": body},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnreachableError creates a 502 for network-level failures where
// no upstream status code exists.
func NewUpstreamUnreachableError(err error) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeUpstream,
		Message:   "AI service request failed",
		Status:    http.StatusBadGateway,
		Details:   map[string]interface{}{"message": err.Error()},
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError creates a 500 with the failure message and trace attached.
func NewInternalError(message, trace string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeInternal,
		Message:   "Unhandled exception",
		Status:    http.StatusInternalServerError,
		Details:   map[string]interface{}{"message": message, "trace": trace},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures any error surfaces as a ServiceError.
func Normalize(err error) *ServiceError {
	if svcErr, ok := err.(*ServiceError); ok {
		return svcErr
	}
	return &ServiceError{
		Code:      ErrCodeInternal,
		Message:   "Unhandled exception",
		Status:    http.StatusInternalServerError,
		Details:   map[string]interface{}{"message": err.Error()},
		Timestamp: time.Now().UTC(),
	}
}
