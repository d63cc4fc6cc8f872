package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgettracker/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a unique opaque user identifier.
func NewUserID() string {
	return fmt.Sprintf("user-%d", nextID())
}

// Dec parses a decimal literal, failing loudly on typos in test tables.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestBudget creates a budget with zero spend for the given period.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, month, year int, amount string) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithSpent(t, db, userID, month, year, amount, "0")
}

// CreateTestBudgetWithSpent creates a budget with a preset spent amount.
func CreateTestBudgetWithSpent(t *testing.T, db *gorm.DB, userID string, month, year int, amount, spent string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:      userID,
		Amount:      Dec(amount),
		SpentAmount: Dec(spent),
		Month:       month,
		Year:        year,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestTransaction inserts a transaction directly, bypassing budget sync.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, amount string, category models.Category, date time.Time) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:   userID,
		Amount:   Dec(amount),
		Category: category,
		Date:     time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// ReloadBudget reads the budget back from the database.
func ReloadBudget(t *testing.T, db *gorm.DB, id string) *models.Budget {
	t.Helper()

	var budget models.Budget
	if err := db.First(&budget, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload budget %s: %v", id, err)
	}
	return &budget
}
