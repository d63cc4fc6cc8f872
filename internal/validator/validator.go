// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"budgettracker/internal/models"
	"budgettracker/internal/money"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Apply(v)
	}
}

// Apply installs the custom tags and type functions on v.
func Apply(v *validator.Validate) {
	// Decimals are validated through their string form; the struct itself has
	// no exported fields for the validator to look at.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("category", validateCategory)
	_ = v.RegisterValidation("money", validateMoney)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return money.Validate(d) == nil
}
