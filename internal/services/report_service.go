package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgettracker/internal/clock"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/money"
)

// reportService computes the read-side views. Sums are folded in Go over
// exact decimals rather than with SQL SUM, which sqlite evaluates in
// floating point.
type reportService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, clk clock.Clock) ReportServicer {
	return &reportService{db: db, clock: clk}
}

// GetBudgetSummary returns the budget of the requested period, or zeros when
// the user has no budget for it. A period no budget can have, such as month
// 13, is answered with zeros as well.
func (s *reportService) GetBudgetSummary(ctx context.Context, userID string, month, year *int) (*BudgetSummary, error) {
	period := models.PeriodOf(s.clock.Now())
	if month != nil {
		period.Month = *month
	}
	if year != nil {
		period.Year = *year
	}

	summary := &BudgetSummary{
		Month:           period.Month,
		Year:            period.Year,
		BudgetAmount:    money.NewAmount(decimal.Zero),
		SpentAmount:     money.NewAmount(decimal.Zero),
		RemainingAmount: money.NewAmount(decimal.Zero),
	}
	if !period.Valid() {
		return summary, nil
	}

	var budget models.Budget
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, period.Month, period.Year).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return summary, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary.BudgetAmount = money.NewAmount(budget.Amount)
	summary.SpentAmount = money.NewAmount(budget.SpentAmount)
	summary.RemainingAmount = money.NewAmount(budget.Remaining())
	return summary, nil
}

// GetSpendingByCategory sums the user's transactions per category, in the
// order each category is first encountered.
func (s *reportService) GetSpendingByCategory(ctx context.Context, userID string) (*CategorySpending, error) {
	var rows []struct {
		Category models.Category
		Amount   decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("category", "amount").
		Where("user_id = ? AND category IS NOT NULL AND category <> ''", userID).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(rows) == 0 {
		return &CategorySpending{HasData: false, Categories: []CategoryTotal{}}, nil
	}

	index := make(map[models.Category]int)
	order := make([]models.Category, 0)
	sums := make([]decimal.Decimal, 0)
	for _, row := range rows {
		i, ok := index[row.Category]
		if !ok {
			i = len(order)
			index[row.Category] = i
			order = append(order, row.Category)
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(row.Amount)
	}

	totals := make([]CategoryTotal, len(order))
	for i, category := range order {
		totals[i] = CategoryTotal{Category: category, Amount: money.NewAmount(sums[i])}
	}

	return &CategorySpending{HasData: true, Categories: totals}, nil
}

// GetExpensesOverTime sums the user's transactions per calendar month,
// oldest month first. Months without transactions are omitted.
func (s *reportService) GetExpensesOverTime(ctx context.Context, userID string) ([]MonthlyTotal, error) {
	var rows []struct {
		Date   time.Time
		Amount decimal.Decimal
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("date", "amount").
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := []MonthlyTotal{}
	var (
		current models.Period
		sum     decimal.Decimal
	)
	flush := func() {
		totals = append(totals, MonthlyTotal{Month: current.String(), TotalSpent: money.NewAmount(sum)})
	}
	for i, row := range rows {
		p := models.PeriodOf(row.Date.UTC())
		if i > 0 && p != current {
			flush()
			sum = decimal.Zero
		}
		current = p
		sum = sum.Add(row.Amount)
	}
	if len(rows) > 0 {
		flush()
	}

	return totals, nil
}
