// Package derrors provides custom error types for addrsearch.
// Each error carries a stable code so callers can branch on the failure class
// without string matching.
package derrors

import (
	"errors"
	"fmt"
)

// Error is the base interface for all addrsearch errors
type Error interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all addrsearch errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

const (
	codeTransport         = "TRANSPORT_ERROR"
	codeTransportCanceled = "TRANSPORT_CANCELLED"
)

// TransportError is returned by the suggestion transport. A cancelled transport
// error means the call was abandoned on request and must be dropped silently.
type TransportError struct {
	baseError
	Endpoint string
}

// NewTransportError creates a transport failure that is not a cancellation
func NewTransportError(endpoint string, message string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			code:    codeTransport,
			message: message,
			cause:   cause,
		},
		Endpoint: endpoint,
	}
}

// NewCancelledError creates a transport error for an abandoned call
func NewCancelledError(endpoint string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			code:    codeTransportCanceled,
			message: "request cancelled",
			cause:   cause,
		},
		Endpoint: endpoint,
	}
}

// Cancelled reports whether the call was abandoned rather than failed
func (e *TransportError) Cancelled() bool {
	return e.code == codeTransportCanceled
}

// IsCancelled reports whether err is, or wraps, a cancelled TransportError
func IsCancelled(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Cancelled()
	}
	return false
}

// UpstreamError represents a failed call from the proxy to the suggestion provider
type UpstreamError struct {
	baseError
	URL    string
	Status int
}

// NewUpstreamError creates a new upstream error. Status is 0 when no response was received.
func NewUpstreamError(url string, status int, message string, cause error) *UpstreamError {
	return &UpstreamError{
		baseError: baseError{
			code:    "UPSTREAM_ERROR",
			message: message,
			cause:   cause,
		},
		URL:    url,
		Status: status,
	}
}

// ConfigurationError represents errors in configuration files
type ConfigurationError struct {
	baseError
	Path string
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(path string, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
			cause:   cause,
		},
		Path: path,
	}
}

// ValidationError represents errors during validation
type ValidationError struct {
	baseError
	Field string
}

// NewValidationError creates a new validation error
func NewValidationError(field string, message string, cause error) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			code:    "VALIDATION_ERROR",
			message: message,
			cause:   cause,
		},
		Field: field,
	}
}

// NotFoundError represents errors when a resource is not found
type NotFoundError struct {
	baseError
	Resource string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, message string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			code:    "NOT_FOUND",
			message: message,
		},
		Resource: resource,
	}
}
