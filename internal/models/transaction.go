package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"budgettracker/internal/money"
)

// Transaction is a single dated spend owned by one user. Positive amounts
// are spend.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:varchar(255);not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Category    Category        `gorm:"type:varchar(20);not null;default:Other" json:"category"`
	Description *string         `gorm:"type:text" json:"description"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2" json:"date"`
}

// MarshalJSON adds the category display label to the serialized transaction
// and renders the amount with two decimal places.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Amount          money.Amount `json:"amount"`
		CategoryDisplay string       `json:"category_display"`
	}{
		alias:           alias(t),
		Amount:          money.NewAmount(t.Amount),
		CategoryDisplay: t.Category.Label(),
	})
}
