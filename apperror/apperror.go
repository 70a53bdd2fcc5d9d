// Package apperror defines a centralized system for application-specific errors.
// Every failure a handler can produce is expressed as an AppError, which knows its
// HTTP status and how to render itself in the two JSON shapes the front end reads:
// `{success, message}` for the auth endpoints and `{error}` for the dashboard.
package apperror

import (
	"errors"
	"fmt"
	// `net/http` is used for HTTP status codes.
	"net/http"
)

// ErrorType is an enumeration (using `iota`) for different categories of application errors.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the datastore
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents an authentication error (e.g. invalid credentials, no session)
	AuthError
	// ValidationError represents a field-level input validation error
	ValidationError
	// BadRequestError represents a malformed or unrecognised request
	BadRequestError
	// MethodNotAllowedError represents a request made with the wrong HTTP method
	MethodNotAllowedError
	// InternalError represents a generic internal server error
	InternalError
	// ExternalServiceError represents a failure to reach an external service (CAPTCHA)
	ExternalServiceError
	// ConflictError represents a conflict, e.g., username or email already registered
	ConflictError
)

// GenericInternalMessage is the only message a client ever sees for a 5xx failure.
const GenericInternalMessage = "internal server error"

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for operator-facing logs while
// `Message` stays safe to show to the client.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
	// Fields carries per-field validation messages, keyed by the JSON field name.
	Fields map[string]string
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error so `errors.Is` and `errors.As` can walk the chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case ValidationError:
		return http.StatusUnprocessableEntity
	case BadRequestError:
		return http.StatusBadRequest
	case MethodNotAllowedError:
		return http.StatusMethodNotAllowed
	case ConflictError:
		return http.StatusConflict
	case DatabaseError, ConfigError, InternalError, ExternalServiceError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsServerError reports whether the error maps to a 5xx status.
func (e *AppError) IsServerError() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// PublicMessage is the message that may be shown to the client. Server-side
// failures never leak their text, except ExternalServiceError whose message
// only names the unreachable dependency.
func (e *AppError) PublicMessage() string {
	if e.IsServerError() && e.Type != ExternalServiceError {
		return GenericInternalMessage
	}
	return e.Message
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// Constructor functions for specific error types

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError (for authentication issues)
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewValidationError creates a new ValidationError carrying per-field messages.
func NewValidationError(message string, fields map[string]string) *AppError {
	e := NewAppError(ValidationError, message, nil)
	e.Fields = fields
	return e
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewMethodNotAllowedError creates a new MethodNotAllowedError
func NewMethodNotAllowedError(message string) *AppError {
	return NewAppError(MethodNotAllowedError, message, nil)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewExternalServiceError creates a new ExternalServiceError
func NewExternalServiceError(message string, underlyingError error) *AppError {
	return NewAppError(ExternalServiceError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// ErrorResponse is the `{error}` payload used by the dashboard endpoint.
type ErrorResponse struct {
	// `example` is a struct tag read by the Swagger generator.
	Error string `json:"error" example:"unauthorized"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.PublicMessage()}
}

// Result is the `{success, message}` payload used by the auth endpoints.
type Result struct {
	Success bool              `json:"success" example:"false"`
	Message string            `json:"message" example:"invalid username or password"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ToResult converts an AppError to a failed Result.
func (e *AppError) ToResult() Result {
	r := Result{Success: false, Message: e.PublicMessage()}
	if !e.IsServerError() && len(e.Fields) > 0 {
		r.Errors = e.Fields
	}
	return r
}

// FromError converts any error to an *AppError. Errors that are not AppErrors
// anywhere in their chain are wrapped as InternalError.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("unexpected error", err)
}

// Helper functions to check error types

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}
