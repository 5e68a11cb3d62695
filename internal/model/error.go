package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeRestaurantNotFound   = "RESTAURANT_NOT_FOUND"
	ErrCodeRestaurantNotCapable = "RESTAURANT_NOT_CAPABLE"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrRestaurantNotFound   = NewDomainError(ErrCodeRestaurantNotFound, "Restaurant not found")
	ErrRestaurantNotCapable = NewDomainError(ErrCodeRestaurantNotCapable, "Restaurant does not stock every product of the order")
	ErrInvalidStatus        = NewDomainError(ErrCodeInvalidStatus, "Unknown order status")
)

// ValidationError describes one rejected field of an incoming request.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found while validating a request.
type ValidationErrors []ValidationError

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Responses renders the errors in the public API shape.
func (v ValidationErrors) Responses() []ErrorResponse {
	out := make([]ErrorResponse, len(v))
	for i, e := range v {
		out[i] = ErrorResponse{Error: e.Error()}
	}
	return out
}
