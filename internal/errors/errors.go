// FilePath: internal/errors/errors.go
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeBadRequestBody   ErrorType = "bad_request_body"
	ErrorTypeMissingField     ErrorType = "missing_field"
	ErrorTypeTypeMismatch     ErrorType = "type_mismatch"
	ErrorTypeOutOfRange       ErrorType = "out_of_range"
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	ErrorTypeDatabase         ErrorType = "database"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeInternal         ErrorType = "internal"
	ErrorTypeUnavailable      ErrorType = "service_unavailable"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal error to errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// NewBadRequestBodyError reports an unparsable request payload
func NewBadRequestBodyError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeBadRequestBody,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewMissingFieldError reports a required field that was absent
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Type:    ErrorTypeMissingField,
		Message: fmt.Sprintf("Required field missing: '%s'", field),
		Code:    http.StatusBadRequest,
	}
}

// NewTypeMismatchError reports a field carrying the wrong type
func NewTypeMismatchError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypeTypeMismatch,
		Message: msg,
		Code:    http.StatusBadRequest,
	}
}

// NewOutOfRangeError reports a numeric field outside its valid domain
func NewOutOfRangeError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypeOutOfRange,
		Message: msg,
		Code:    http.StatusBadRequest,
	}
}

// NewMethodNotAllowedError reports an unsupported HTTP verb
func NewMethodNotAllowedError(method string) *APIError {
	return &APIError{
		Type:    ErrorTypeMethodNotAllowed,
		Message: fmt.Sprintf("Method not allowed: %s. Only POST requests are supported.", method),
		Code:    http.StatusMethodNotAllowed,
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeDatabase,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    http.StatusNotFound,
		err:     err,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsClientError reports whether the error maps to a 4xx status
func IsClientError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError
	}
	return false
}

// AsAPIError coerces any error into an APIError, wrapping unknown
// errors as internal ones so every failure path has a status code.
func AsAPIError(err error) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewInternalError("unexpected error", err)
}
