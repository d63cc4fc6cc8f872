package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/models"
)

// CategoryHandler serves the fixed category list.
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// GetCategories returns every transaction category with its display label
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.CategoryChoice "Categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryChoices())
}
