package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgettracker/internal/clock"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/events"
	"budgettracker/internal/logger"
	"budgettracker/internal/metrics"
	"budgettracker/internal/models"
	"budgettracker/internal/money"
)

// SyncMode selects which budget a transaction write adjusts.
type SyncMode string

const (
	// SyncByRequestTime adjusts the budget of the month the request runs in,
	// whatever the transaction's own date.
	SyncByRequestTime SyncMode = "request"
	// SyncByTransactionDate adjusts the budget of the transaction's month.
	SyncByTransactionDate SyncMode = "transaction"
)

// ParseSyncMode maps a configuration value to a SyncMode.
func ParseSyncMode(s string) (SyncMode, error) {
	switch m := SyncMode(s); m {
	case SyncByRequestTime, SyncByTransactionDate:
		return m, nil
	}
	return "", fmt.Errorf("unknown budget sync mode %q", s)
}

// Sync operations, used as metric labels.
const (
	syncCreate = "create"
	syncUpdate = "update"
	syncDelete = "delete"
)

// BudgetSyncer keeps a budget's spent total in step with transaction writes.
// Its methods run inside the caller's database transaction: the budget row is
// locked, then adjusted with an in-database increment, so concurrent writes
// against one budget serialize instead of losing updates.
type BudgetSyncer struct {
	clock     clock.Clock
	mode      SyncMode
	publisher events.Publisher
}

// NewBudgetSyncer creates a BudgetSyncer. A nil publisher disables events.
func NewBudgetSyncer(clk clock.Clock, mode SyncMode, publisher events.Publisher) *BudgetSyncer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if mode == "" {
		mode = SyncByRequestTime
	}
	return &BudgetSyncer{clock: clk, mode: mode, publisher: publisher}
}

// Today returns the date assigned to new transactions.
func (s *BudgetSyncer) Today() time.Time {
	return clock.Today(s.clock)
}

// CurrentPeriod returns the calendar month the clock is in.
func (s *BudgetSyncer) CurrentPeriod() models.Period {
	return models.PeriodOf(s.clock.Now())
}

// periodFor resolves the budget period a transaction write is attributed to.
func (s *BudgetSyncer) periodFor(txn *models.Transaction) models.Period {
	if s.mode == SyncByTransactionDate && !txn.Date.IsZero() {
		return models.PeriodOf(txn.Date)
	}
	return s.CurrentPeriod()
}

// lockBudget loads the budget of the transaction's sync period with a row
// lock. It returns ErrNoCurrentBudget when none exists.
func (s *BudgetSyncer) lockBudget(tx *gorm.DB, txn *models.Transaction) (*models.Budget, error) {
	period := s.periodFor(txn)

	var budget models.Budget
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND month = ? AND year = ?", txn.UserID, period.Month, period.Year).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoCurrentBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// adjust adds delta to the budget's spent total and reloads the row.
func (s *BudgetSyncer) adjust(tx *gorm.DB, budget *models.Budget, delta decimal.Decimal) error {
	if !delta.IsZero() {
		err := tx.Model(budget).
			Update("spent_amount", gorm.Expr("spent_amount + ?", delta)).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if err := tx.First(budget, "id = ?", budget.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// record counts the outcome of a sync operation.
func (s *BudgetSyncer) record(operation string, err error) {
	switch {
	case err == nil:
		metrics.RecordSync(operation, metrics.OutcomeApplied)
	case errors.Is(err, apperrors.ErrNoCurrentBudget):
		metrics.RecordSync(operation, metrics.OutcomeNoBudget)
	default:
		metrics.RecordSync(operation, metrics.OutcomeFailed)
	}
}

// notify publishes the committed budget state. Delivery failures are logged;
// the write they describe has already succeeded.
func (s *BudgetSyncer) notify(ctx context.Context, cause string, budget *models.Budget, transactionID string) {
	event := events.Event{
		Type:            events.TypeBudgetSpentChanged,
		BudgetID:        budget.ID,
		UserID:          budget.UserID,
		Month:           budget.Month,
		Year:            budget.Year,
		BudgetAmount:    money.NewAmount(budget.Amount),
		SpentAmount:     money.NewAmount(budget.SpentAmount),
		RemainingAmount: money.NewAmount(budget.Remaining()),
		Cause:           cause,
		TransactionID:   transactionID,
		OccurredAt:      s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish budget event",
			logger.FieldBudgetID, budget.ID,
			logger.FieldTransactionID, transactionID,
			"cause", cause,
			"error", err,
		)
	}
}

// snapshot rounds the budget state for presentation.
func snapshot(budget *models.Budget) *BudgetSnapshot {
	return &BudgetSnapshot{
		SpentAmount:     money.NewAmount(budget.SpentAmount),
		RemainingBudget: money.NewAmount(budget.Remaining()),
	}
}
