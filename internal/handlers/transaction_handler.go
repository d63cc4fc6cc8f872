package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// The transaction is always dated today.
type CreateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"25.50"`
	Category    models.Category  `json:"category" binding:"omitempty,category" example:"Food"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"omitempty,money" swaggertype:"string" example:"25.50"`
	Category    *models.Category `json:"category" binding:"omitempty,category" example:"Food"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a spend dated today and add it to the current month's budget
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionSyncResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} TransactionNoBudgetResponse "Transaction stored, no budget for the current month"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, services.TransactionInput{
		Amount:      *req.Amount,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.Budget == nil {
		body := errorBody(apperrors.ErrNoCurrentBudget)
		body["transaction"] = result.Transaction
		c.JSON(http.StatusNotFound, body)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction":      result.Transaction,
		"spent_amount":     result.Budget.SpentAmount,
		"remaining_budget": result.Budget.RemainingBudget,
	})
}

// GetTransactions returns all transactions for the authenticated user
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]models.Transaction "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// GetTransactionByID returns a specific transaction by ID
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction applies a partial edit to a transaction
// @Summary     Update a transaction
// @Description Edit a transaction and move its budget's spent amount by the difference
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} TransactionSyncResponse "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, services.TransactionUpdate{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction":      result.Transaction,
		"spent_amount":     result.Budget.SpentAmount,
		"remaining_budget": result.Budget.RemainingBudget,
	})
}

// DeleteTransaction removes a transaction
// @Summary     Delete a transaction
// @Description Delete a transaction and subtract its amount from its budget
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionDeletedResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction or budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Transaction deleted successfully.",
		"spent_amount":     budget.SpentAmount,
		"remaining_budget": budget.RemainingBudget,
	})
}
