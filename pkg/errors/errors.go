package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrProductNotFound     = errors.New("loan product not found")
	ErrInvalidTransition   = errors.New("invalid application status transition")
	ErrAccountClosed       = errors.New("account is already closed")
	ErrInvalidAmount       = errors.New("invalid payment amount")
	ErrInvalidInput        = errors.New("invalid calculator input")
	ErrValidation          = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeApplicationNotFound = "APPLICATION_NOT_FOUND"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeAccountClosed       = "ACCOUNT_CLOSED"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// FieldViolation describes a single invalid field in a submitted request.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field at once rather than just the
// first one, so callers can surface all problems in a single round trip.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError from collected violations.
func NewValidationError(violations []FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Wrap common errors with business context
func WrapApplicationNotFound(applicationID string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Application with ID %s not found", applicationID),
		ErrApplicationNotFound,
	)
}

func WrapAccountNotFound(accountID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountNotFound,
		fmt.Sprintf("Account with ID %s not found", accountID),
		ErrAccountNotFound,
	)
}

func WrapProductNotFound(name string) *BusinessError {
	return NewBusinessError(
		ErrCodeProductNotFound,
		fmt.Sprintf("Loan product %q not found", name),
		ErrProductNotFound,
	)
}

func WrapInvalidTransition(applicationID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("Application %s cannot move from %s to %s", applicationID, from, to),
		ErrInvalidTransition,
	)
}

func WrapAccountClosed(accountID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountClosed,
		fmt.Sprintf("Account with ID %s is already closed", accountID),
		ErrAccountClosed,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapInvalidInput(detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInput,
		detail,
		ErrInvalidInput,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
