// Package errors provides the structured error type returned by services and
// written by handlers. Internal causes are kept for logging and never reach
// clients.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match it.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found.", StatusCode: http.StatusNotFound}
	ErrInvalidCategory     = &AppError{Code: "INVALID_CATEGORY", Message: "Unknown transaction category", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must have at most 8 integer digits and 2 decimal places", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound      = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found.", StatusCode: http.StatusNotFound}
	ErrNoCurrentBudget     = &AppError{Code: "BUDGET_NOT_FOUND", Message: "No budget found for the current month.", StatusCode: http.StatusNotFound}
	ErrBudgetExists        = &AppError{Code: "BUDGET_EXISTS", Message: "Budget already exists for this month/year.", StatusCode: http.StatusBadRequest}
	ErrInvalidBudgetPeriod = &AppError{Code: "INVALID_BUDGET_PERIOD", Message: "Month must be between 1 and 12 and year must be positive", StatusCode: http.StatusBadRequest}
)

// Report errors.
var (
	ErrInvalidPeriodParams = &AppError{Code: "INVALID_INPUT", Message: "Month and year must be integers.", StatusCode: http.StatusBadRequest}
)
