package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

// ReportHandler serves the read-only spending views.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetBudgetSummary reports the budget of one month
// @Summary     Budget summary
// @Description Budget, spent and remaining amounts of a month. Zeros when the month has no budget.
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month (1-12), defaults to the current month"
// @Param       year  query int false "Year, defaults to the current year"
// @Success     200 {object} services.BudgetSummary "Summary"
// @Failure     400 {object} ErrorResponse "Month or year is not an integer"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget-summary [get]
func (h *ReportHandler) GetBudgetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := optionalIntQuery(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := optionalIntQuery(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.GetBudgetSummary(c.Request.Context(), userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSpendingByCategory sums spend per category
// @Summary     Spending by category
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.CategoryTotal "Totals per category"
// @Success     200 {object} DetailResponse "No spending data"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /spending-by-category [get]
func (h *ReportHandler) GetSpendingByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	spending, err := h.reportService.GetSpendingByCategory(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !spending.HasData {
		c.JSON(http.StatusOK, DetailResponse{Detail: "No spending data available."})
		return
	}

	c.JSON(http.StatusOK, spending.Categories)
}

// GetExpensesOverTime sums spend per calendar month
// @Summary     Expenses over time
// @Description Monthly totals, oldest month first
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  services.MonthlyTotal "Totals per month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /total-expenses-over-time [get]
func (h *ReportHandler) GetExpensesOverTime(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.reportService.GetExpensesOverTime(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// optionalIntQuery parses an integer query parameter. A missing parameter
// yields nil; a present but empty one is not an integer.
func optionalIntQuery(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.ErrInvalidPeriodParams
	}
	return &v, nil
}
