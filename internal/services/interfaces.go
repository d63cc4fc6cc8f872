package services

import (
	"context"

	"github.com/shopspring/decimal"

	"budgettracker/internal/models"
	"budgettracker/internal/money"
)

// TransactionInput carries the caller-supplied fields of a new transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Category    models.Category
	Description *string
}

// TransactionUpdate carries a partial transaction edit; nil fields are kept.
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	Category    *models.Category
	Description *string
}

// BudgetSnapshot is the state of the synced budget after a transaction write,
// rounded to two decimal places.
type BudgetSnapshot struct {
	SpentAmount     money.Amount `json:"spent_amount"`
	RemainingBudget money.Amount `json:"remaining_budget"`
}

// TransactionResult is a written transaction together with the budget it
// was synced to. Budget is nil when no budget exists for the sync period;
// the transaction is persisted regardless.
type TransactionResult struct {
	Transaction *models.Transaction
	Budget      *BudgetSnapshot
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*TransactionResult, error)
	GetUserTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionUpdate) (*TransactionResult, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) (*BudgetSnapshot, error)
}

// BudgetUpdate carries a partial budget edit; nil fields are kept.
type BudgetUpdate struct {
	Amount *decimal.Decimal
	Month  *int
	Year   *int
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID string, month, year int, amount decimal.Decimal) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, in BudgetUpdate) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
}

// BudgetSummary is the budget of one period, zero-filled when none exists.
type BudgetSummary struct {
	Month           int          `json:"month"`
	Year            int          `json:"year"`
	BudgetAmount    money.Amount `json:"budget_amount"`
	SpentAmount     money.Amount `json:"spent_amount"`
	RemainingAmount money.Amount `json:"remaining_amount"`
}

// CategoryTotal is the summed spend of one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Amount   money.Amount    `json:"amount"`
}

// CategorySpending groups a user's spend by category. HasData is false when
// the user has no categorized transactions at all, which callers report
// differently from an empty breakdown.
type CategorySpending struct {
	HasData    bool
	Categories []CategoryTotal
}

// MonthlyTotal is the summed spend of one calendar month.
type MonthlyTotal struct {
	Month      string       `json:"month"`
	TotalSpent money.Amount `json:"total_spent"`
}

// ReportServicer defines the contract for the read-side aggregations.
type ReportServicer interface {
	// GetBudgetSummary reports the budget of a period. Nil month or year
	// default to the current period.
	GetBudgetSummary(ctx context.Context, userID string, month, year *int) (*BudgetSummary, error)
	GetSpendingByCategory(ctx context.Context, userID string) (*CategorySpending, error)
	GetExpensesOverTime(ctx context.Context, userID string) ([]MonthlyTotal, error)
}
