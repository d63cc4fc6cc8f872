// Package money holds the rules for monetary amounts: two decimal places,
// at most ten significant digits, rounding at presentation time.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits an amount may carry.
const Places = 2

// maxAmount is the first magnitude that no longer fits NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

var (
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")
	ErrTooLarge   = errors.New("amount has more than 8 integer digits")
)

// Validate checks that d fits the storage column.
func Validate(d decimal.Decimal) error {
	if !d.Round(Places).Equal(d) {
		return ErrTooPrecise
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return ErrTooLarge
	}
	return nil
}

// Round rounds d half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Amount is an amount as presented to API callers. It serializes with
// exactly two fractional digits, so 120.5 renders as "120.50".
type Amount struct {
	decimal.Decimal
}

// NewAmount rounds d for presentation.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: Round(d)}
}

// String renders the amount with two decimal places.
func (a Amount) String() string {
	return Format(a.Decimal)
}

// MarshalJSON renders the amount as a quoted fixed-point string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Format(a.Decimal) + `"`), nil
}
