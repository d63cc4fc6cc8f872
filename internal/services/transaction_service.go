package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/events"
	"budgettracker/internal/models"
	"budgettracker/internal/money"
)

// transactionService handles transaction-related business logic. Every write
// goes through the budget syncer in the same database transaction.
type transactionService struct {
	db     *gorm.DB
	syncer *BudgetSyncer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, syncer *BudgetSyncer) TransactionServicer {
	return &transactionService{
		db:     db,
		syncer: syncer,
	}
}

// CreateTransaction records a transaction dated today and adds its amount to
// the sync period's budget. Without a budget the transaction is still kept
// and the result carries no budget snapshot.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*TransactionResult, error) {
	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}
	if err := validateTransactionFields(in.Amount, category); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Amount:      in.Amount,
		Category:    category,
		Description: in.Description,
		Date:        s.syncer.Today(),
	}

	var budget *models.Budget
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		b, err := s.syncer.lockBudget(tx, transaction)
		if errors.Is(err, apperrors.ErrNoCurrentBudget) {
			// Commit the transaction without touching any budget.
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.syncer.adjust(tx, b, transaction.Amount); err != nil {
			return err
		}
		budget = b
		return nil
	})
	if err != nil {
		s.syncer.record(syncCreate, err)
		return nil, err
	}

	result := &TransactionResult{Transaction: transaction}
	if budget == nil {
		s.syncer.record(syncCreate, apperrors.ErrNoCurrentBudget)
		return result, nil
	}

	s.syncer.record(syncCreate, nil)
	s.syncer.notify(ctx, events.CauseTransactionCreated, budget, transaction.ID)
	result.Budget = snapshot(budget)
	return result, nil
}

// GetUserTransactions returns all of the user's transactions, oldest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	return findTransaction(s.db.WithContext(ctx), userID, transactionID)
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial edit and moves the budget's spent total
// by the difference between the new and the old amount. A missing
// transaction or budget aborts the edit without changing either.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionUpdate) (*TransactionResult, error) {
	if in.Amount != nil {
		if err := validateAmount(*in.Amount); err != nil {
			return nil, err
		}
	}
	if in.Category != nil && !in.Category.Valid() {
		return nil, apperrors.ErrInvalidCategory
	}

	var (
		transaction *models.Transaction
		budget      *models.Budget
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transaction, err = findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		budget, err = s.syncer.lockBudget(tx, transaction)
		if err != nil {
			return err
		}

		oldAmount := transaction.Amount
		updates := make(map[string]interface{})
		if in.Amount != nil {
			updates["amount"] = *in.Amount
			transaction.Amount = *in.Amount
		}
		if in.Category != nil {
			updates["category"] = *in.Category
			transaction.Category = *in.Category
		}
		if in.Description != nil {
			updates["description"] = *in.Description
			transaction.Description = in.Description
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Transaction{}).
				Where("id = ?", transaction.ID).
				Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.First(transaction, "id = ?", transaction.ID).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return s.syncer.adjust(tx, budget, transaction.Amount.Sub(oldAmount))
	})
	s.syncer.record(syncUpdate, err)
	if err != nil {
		return nil, err
	}

	s.syncer.notify(ctx, events.CauseTransactionUpdated, budget, transaction.ID)
	return &TransactionResult{Transaction: transaction, Budget: snapshot(budget)}, nil
}

// DeleteTransaction subtracts the transaction's amount from the budget and
// deletes it. Without a budget for the sync period the transaction is kept
// and ErrNoCurrentBudget is returned.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) (*BudgetSnapshot, error) {
	var budget *models.Budget
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		budget, err = s.syncer.lockBudget(tx, transaction)
		if err != nil {
			return err
		}

		if err := s.syncer.adjust(tx, budget, transaction.Amount.Neg()); err != nil {
			return err
		}

		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	s.syncer.record(syncDelete, err)
	if err != nil {
		return nil, err
	}

	s.syncer.notify(ctx, events.CauseTransactionDeleted, budget, transactionID)
	return snapshot(budget), nil
}

func validateTransactionFields(amount decimal.Decimal, category models.Category) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if !category.Valid() {
		return apperrors.ErrInvalidCategory
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if err := money.Validate(amount); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidAmount, err)
	}
	return nil
}
