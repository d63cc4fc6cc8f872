package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates the budget of a (month, year) period. A second budget
// for the same period is rejected with ErrBudgetExists.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, month, year int, amount decimal.Decimal) (*models.Budget, error) {
	if !(models.Period{Year: year, Month: month}).Valid() {
		return nil, apperrors.ErrInvalidBudgetPeriod
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Budget{}).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrBudgetExists
	}

	budget := &models.Budget{
		UserID:      userID,
		Amount:      amount,
		SpentAmount: decimal.Zero,
		Month:       month,
		Year:        year,
	}

	// The unique index catches a concurrent create that passed the check above.
	if err := db.Create(budget).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrBudgetExists
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns all budgets of the user, newest period first.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	budgets := []models.Budget{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC, month DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's amount or period. Moving a budget
// onto a period that already has one fails with ErrBudgetExists. The spent
// total is left as is.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, in BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	period := budget.Period()
	if in.Amount != nil {
		if err := validateAmount(*in.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *in.Amount
	}
	if in.Month != nil {
		period.Month = *in.Month
		updates["month"] = *in.Month
	}
	if in.Year != nil {
		period.Year = *in.Year
		updates["year"] = *in.Year
	}
	if !period.Valid() {
		return nil, apperrors.ErrInvalidBudgetPeriod
	}

	if len(updates) > 0 {
		db := s.db.WithContext(ctx)
		if err := db.Model(budget).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, apperrors.ErrBudgetExists
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := db.First(budget, "id = ?", budget.ID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget removes a budget. Transactions of its period are untouched.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

// isUniqueViolation reports whether err comes from a unique index. Drivers
// without error translation are matched on their message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
