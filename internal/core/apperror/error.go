// Package apperror defines the structured error type every layer of
// the backend speaks. Services return *AppError for business failures;
// the HTTP error middleware turns any AppError in the chain into the
// JSON problem payload.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	// Infrastructure (5xx)
	CodeInternal  = "INTERNAL_ERROR"
	CodeDatabase  = "DATABASE_ERROR"
	CodeTimeout   = "TIMEOUT_ERROR"
	CodeIntegrity = "INTEGRITY_ERROR"

	// Validation (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rules (422)
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodePoolUnavailable   = "POOL_UNAVAILABLE"

	// Auth (401/403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotApproved  = "ACCOUNT_NOT_APPROVED"

	// Lookup and conflicts (404/409)
	CodeNotFound  = "NOT_FOUND"
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError carries a code, a human message, optional structured details
// and the HTTP status the API should answer with.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func newError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As over the cause chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds one key to the details map.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error. It never reaches the client.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewValidation reports bad input (400).
func NewValidation(message string) *AppError {
	return newError(CodeValidation, message, http.StatusBadRequest)
}

// NewNotFound reports a missing entity (404).
func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule reports a domain rule violation (422) under a
// caller-chosen code.
func NewBusinessRule(code, message string) *AppError {
	return newError(code, message, http.StatusUnprocessableEntity)
}

// NewInsufficientStock reports a stock shortage with the quantities the
// cashier needs to see.
func NewInsufficientStock(product string, requested, available int) *AppError {
	return newError(CodeInsufficientStock, "Insufficient stock", http.StatusUnprocessableEntity).
		WithDetail("product", product).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewPoolUnavailable is returned when a damaged/expiring pool entry
// cannot satisfy a sale line. The message is shown to the cashier
// verbatim.
func NewPoolUnavailable(message string) *AppError {
	return newError(CodePoolUnavailable, message, http.StatusUnprocessableEntity)
}

// NewIntegrity reports a fatal integrity failure (500), e.g. when
// unique reference generation keeps colliding after bounded retries.
func NewIntegrity(message string) *AppError {
	return newError(CodeIntegrity, message, http.StatusInternalServerError)
}

// NewInternal wraps an unexpected error. The client only ever sees the
// generic message.
func NewInternal(err error) *AppError {
	return newError(CodeInternal, "Internal server error", http.StatusInternalServerError).WithCause(err)
}

// NewUnauthorized reports missing or invalid credentials (401).
func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message, http.StatusUnauthorized)
}

// NewForbidden reports insufficient permissions (403).
func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, message, http.StatusForbidden)
}

// NewNotApproved is returned when a registered user has not yet been
// approved by a manager.
func NewNotApproved() *AppError {
	return newError(CodeNotApproved, "Account not approved yet, contact admin", http.StatusForbidden)
}

// NewConflict reports a state conflict (409).
func NewConflict(message string) *AppError {
	return newError(CodeConflict, message, http.StatusConflict)
}

// NewDuplicate reports a uniqueness violation (409).
func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, fmt.Sprintf("%s with this %s already exists", entity, field), http.StatusConflict).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// IsAppError reports whether err has an AppError in its chain.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts the AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus maps any error to an HTTP status.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a not-found AppError.
func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == CodeNotFound
}

// IsPoolUnavailable reports whether err is a pool availability AppError.
func IsPoolUnavailable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == CodePoolUnavailable
}
