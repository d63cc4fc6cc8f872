package handlers

import (
	"budgettracker/internal/models"
	"budgettracker/internal/money"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// DetailResponse carries an informational message in place of data.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// TransactionSyncResponse is a written transaction with the synced budget state.
type TransactionSyncResponse struct {
	Transaction     models.Transaction `json:"transaction"`
	SpentAmount     money.Amount       `json:"spent_amount"`
	RemainingBudget money.Amount       `json:"remaining_budget"`
}

// TransactionNoBudgetResponse is returned when a transaction was stored but
// no budget exists for its period.
type TransactionNoBudgetResponse struct {
	Error       ErrorDetail        `json:"error"`
	Transaction models.Transaction `json:"transaction"`
}

// TransactionDeletedResponse confirms a deletion with the synced budget state.
type TransactionDeletedResponse struct {
	Message         string       `json:"message"`
	SpentAmount     money.Amount `json:"spent_amount"`
	RemainingBudget money.Amount `json:"remaining_budget"`
}
