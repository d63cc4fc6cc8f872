// Package events publishes budget changes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"budgettracker/internal/money"
)

// TypeBudgetSpentChanged is emitted after a budget's spent total changed.
const TypeBudgetSpentChanged = "budget.spent_changed"

// Causes of a spent total change.
const (
	CauseTransactionCreated = "transaction.created"
	CauseTransactionUpdated = "transaction.updated"
	CauseTransactionDeleted = "transaction.deleted"
)

// Event is the message body published for a budget change.
type Event struct {
	Type            string       `json:"type"`
	BudgetID        string       `json:"budget_id"`
	UserID          string       `json:"user_id"`
	Month           int          `json:"month"`
	Year            int          `json:"year"`
	BudgetAmount    money.Amount `json:"budget_amount"`
	SpentAmount     money.Amount `json:"spent_amount"`
	RemainingAmount money.Amount `json:"remaining_amount"`
	Cause           string       `json:"cause"`
	TransactionID   string       `json:"transaction_id"`
	OccurredAt      time.Time    `json:"occurred_at"`
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
