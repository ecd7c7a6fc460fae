// Package errors defines the structured error type returned across service
// boundaries. HTTP handlers translate a ServiceError into a status code and a
// JSON body; anything else is reported as an internal error.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable, machine readable error identifier.
type ErrorCode string

const (
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeUpstream          ErrorCode = "UPSTREAM_ERROR"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ServiceError carries an error code, a client-safe message and the HTTP
// status it maps to.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of e with key set in Details.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

func newError(code ErrorCode, status int, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func InvalidInput(message string) *ServiceError {
	return newError(CodeInvalidInput, http.StatusBadRequest, message, nil)
}

func NotFound(resource, id string) *ServiceError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s %s not found", resource, id), nil).
		WithDetails("id", id)
}

func Conflict(message string) *ServiceError {
	return newError(CodeConflict, http.StatusConflict, message, nil)
}

func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "Unauthorized"
	}
	return newError(CodeUnauthorized, http.StatusUnauthorized, message, nil)
}

func RateLimitExceeded(limit int, window string) *ServiceError {
	return newError(CodeRateLimitExceeded, http.StatusTooManyRequests, "Rate limit exceeded", nil).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

// Upstream reports a failure talking to a remote dependency.
func Upstream(message string, err error) *ServiceError {
	return newError(CodeUpstream, http.StatusBadGateway, message, err)
}

func Internal(message string, err error) *ServiceError {
	return newError(CodeInternal, http.StatusInternalServerError, message, err)
}

// GetServiceError extracts a ServiceError from err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == CodeNotFound
}

// HTTPStatus maps err to a status code, defaulting to 500.
func HTTPStatus(err error) int {
	if svcErr := GetServiceError(err); svcErr != nil {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
