package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a string type for consistent error codes.
type ErrorCode string

// Error codes returned in API error bodies.
const (
	// Generic
	ErrorCodeInternalServerError ErrorCode = "internal_server_error"
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	ErrorCodeUnavailable         ErrorCode = "service_unavailable"

	// Validation
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeMissingParameter ErrorCode = "missing_parameter"
	ErrorCodeInvalidFormat    ErrorCode = "invalid_format"

	// Data
	ErrorCodeResourceNotFound ErrorCode = "resource_not_found"
	ErrorCodeUpstreamFailed   ErrorCode = "upstream_failed"
)

type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	StatusCode int       `json:"-"`
}

// Error makes APIError implement the error interface.
func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAPIError is a constructor for APIError.
func NewAPIError(code ErrorCode, message string, details any, statusCode int) APIError {
	return APIError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: statusCode,
	}
}

// ValidationError is a user-facing input problem. Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrNotFound marks a lookup that matched nothing.
var ErrNotFound = errors.New("not found")

// ToAPIError maps an error from the service layer onto an APIError.
func ToAPIError(err error) APIError {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewAPIError(ErrorCodeValidationFailed, verr.Message, map[string]string{"field": verr.Field}, http.StatusBadRequest)
	}
	var derr *DecodeError
	if errors.As(err, &derr) {
		return NewAPIError(ErrorCodeInvalidFormat, derr.Error(), nil, http.StatusBadGateway)
	}
	if errors.Is(err, ErrUpstream) {
		return NewAPIError(ErrorCodeUpstreamFailed, err.Error(), nil, http.StatusBadGateway)
	}
	if errors.Is(err, ErrUnavailable) {
		return NewAPIError(ErrorCodeUnavailable, err.Error(), nil, http.StatusServiceUnavailable)
	}
	if errors.Is(err, ErrNotFound) {
		return NewAPIError(ErrorCodeResourceNotFound, err.Error(), nil, http.StatusNotFound)
	}
	return NewAPIError(ErrorCodeInternalServerError, err.Error(), nil, http.StatusInternalServerError)
}
