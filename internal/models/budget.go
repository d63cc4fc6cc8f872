package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"budgettracker/internal/money"
)

// Budget is a user's allowance for one calendar month. SpentAmount is kept in
// step with the period's transactions by the budget sync engine and is not
// writable through the API.
type Budget struct {
	Base
	UserID      string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_budgets_user_period,priority:1" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	SpentAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"spent_amount"`
	Month       int             `gorm:"not null;uniqueIndex:uq_budgets_user_period,priority:2" json:"month"`
	Year        int             `gorm:"not null;uniqueIndex:uq_budgets_user_period,priority:3" json:"year"`
}

// Remaining returns the budgeted amount minus the spent amount.
func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.SpentAmount)
}

// Period returns the budget's (year, month).
func (b *Budget) Period() Period {
	return Period{Year: b.Year, Month: b.Month}
}

// MarshalJSON renders the amounts with two decimal places.
func (b Budget) MarshalJSON() ([]byte, error) {
	type alias Budget
	return json.Marshal(struct {
		alias
		Amount      money.Amount `json:"amount"`
		SpentAmount money.Amount `json:"spent_amount"`
	}{
		alias:       alias(b),
		Amount:      money.NewAmount(b.Amount),
		SpentAmount: money.NewAmount(b.SpentAmount),
	})
}
