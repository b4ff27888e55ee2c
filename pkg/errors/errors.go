package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error codes
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Booking domain error codes
const (
	CodeInvalidLocationReference  = "INVALID_LOCATION_REFERENCE"
	CodeQuantityExceedsPriorStage = "QUANTITY_EXCEEDS_PRIOR_STAGE"
	CodeIllegalStatusTransition   = "ILLEGAL_STATUS_TRANSITION"
	CodeBookingLocked             = "BOOKING_LOCKED"
	CodeDiscontinuousLegChain     = "DISCONTINUOUS_LEG_CHAIN"
)

// AppError represents an application error with HTTP status and error code
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Wrap wraps an existing error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrValidationWithFields creates a validation error with per-field messages
func ErrValidationWithFields(message string, fields map[string]string) *AppError {
	return ErrValidation(message).WithDetails(fields)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrNotFoundWithID creates a not found error with ID
func ErrNotFoundWithID(resource, id string) *AppError {
	return ErrNotFound(resource).WithDetail("id", id)
}

// ErrConflict creates a conflict error
func ErrConflict(message string) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict)
}

// ErrBadRequest creates a bad request error
func ErrBadRequest(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// ErrServiceUnavailable creates a service unavailable error
func ErrServiceUnavailable(service string) *AppError {
	return NewAppError(CodeServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

// ErrInvalidLocationReference creates an invalid location reference error
func ErrInvalidLocationReference(value string) *AppError {
	return NewAppError(CodeInvalidLocationReference, "location reference is malformed or uses a disallowed collection", http.StatusBadRequest).
		WithDetail("value", value)
}

// ErrQuantityExceedsPriorStage creates a quantity bound violation error
func ErrQuantityExceedsPriorStage(message string) *AppError {
	return NewAppError(CodeQuantityExceedsPriorStage, message, http.StatusUnprocessableEntity)
}

// ErrIllegalStatusTransition creates an illegal transition error
func ErrIllegalStatusTransition(current, target string) *AppError {
	return NewAppError(CodeIllegalStatusTransition, fmt.Sprintf("cannot transition booking from %s to %s", current, target), http.StatusConflict)
}

// ErrBookingLocked creates a terminal-status mutation error
func ErrBookingLocked(status string) *AppError {
	return NewAppError(CodeBookingLocked, fmt.Sprintf("booking is locked in terminal status %s", status), http.StatusConflict)
}

// ErrDiscontinuousLegChain creates a leg chain consistency error
func ErrDiscontinuousLegChain(phase string) *AppError {
	return NewAppError(CodeDiscontinuousLegChain, "generated leg chain is not contiguous", http.StatusUnprocessableEntity).
		WithDetail("phase", phase)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError converts a standard error to an AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return ErrInternal("").Wrap(err)
}
