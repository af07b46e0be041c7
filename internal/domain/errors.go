package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeProvider       = "PROVIDER_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
	CodeRouteNotFound  = "ROUTE_NOT_FOUND"
)

// ErrDuplicateMessage is returned by the store when a provider message id is
// already taken by another message.
var ErrDuplicateMessage = errors.New("provider message id already recorded")

// AppError is implemented by every error kind the HTTP boundary knows how to render.
type AppError interface {
	error
	Code() string
	HTTPStatus() int
}

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
	Details map[string]string
}

func NewValidationError(message string, details map[string]string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Code() string  { return CodeValidation }

// HTTPStatus is 422 for schema failures that carry per-field details and 400
// for malformed input.
func (e *ValidationError) HTTPStatus() int {
	if len(e.Details) > 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
func (e *NotFoundError) Code() string    { return CodeNotFound }
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// RateLimitError reports that the caller exceeded its quota.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string   { return "Too many requests, please try again later" }
func (e *RateLimitError) Code() string    { return CodeRateLimit }
func (e *RateLimitError) HTTPStatus() int { return http.StatusTooManyRequests }

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below 1.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// ProviderError reports that an external provider rejected an operation.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string { return e.Message }
func (e *ProviderError) Code() string  { return CodeProvider }

// HTTPStatus reflects the provider's own status code when it is a client or
// server error, and 502 otherwise.
func (e *ProviderError) HTTPStatus() int {
	if e.StatusCode >= 400 && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}

// DatabaseError reports that a persistence operation failed unexpectedly.
type DatabaseError struct {
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database operation %q failed: %v", e.Operation, e.Err)
}
func (e *DatabaseError) Unwrap() error   { return e.Err }
func (e *DatabaseError) Code() string    { return CodeDatabase }
func (e *DatabaseError) HTTPStatus() int { return http.StatusInternalServerError }

// AuthenticationError reports a missing or invalid webhook signature or key.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string   { return e.Message }
func (e *AuthenticationError) Code() string    { return CodeAuthentication }
func (e *AuthenticationError) HTTPStatus() int { return http.StatusUnauthorized }
