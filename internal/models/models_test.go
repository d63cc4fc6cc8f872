package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCategory(t *testing.T) {
	t.Run("closed set", func(t *testing.T) {
		for _, c := range Categories() {
			if !c.Valid() {
				t.Errorf("expected %q to be valid", c)
			}
		}
		for _, c := range []Category{"", "food", "Groceries", "Other "} {
			if c.Valid() {
				t.Errorf("expected %q to be invalid", c)
			}
		}
	})

	t.Run("choices keep declaration order", func(t *testing.T) {
		choices := CategoryChoices()
		if len(choices) != 12 {
			t.Fatalf("expected 12 choices, got %d", len(choices))
		}
		if choices[0].Value != CategoryFood || choices[11].Value != CategoryOther {
			t.Errorf("unexpected order: first=%q last=%q", choices[0].Value, choices[11].Value)
		}
		if choices[4].Label != "Entertainment" {
			t.Errorf("expected label Entertainment, got %q", choices[4].Label)
		}
	})

	t.Run("categories returns a copy", func(t *testing.T) {
		cs := Categories()
		cs[0] = "Mutated"
		if Categories()[0] != CategoryFood {
			t.Error("expected internal list to be unchanged")
		}
	})
}

func TestPeriod(t *testing.T) {
	p := PeriodOf(time.Date(2024, time.June, 30, 23, 0, 0, 0, time.UTC))
	if p != (Period{Year: 2024, Month: 6}) {
		t.Fatalf("unexpected period %+v", p)
	}
	if p.String() != "2024-06" {
		t.Errorf("expected 2024-06, got %s", p.String())
	}
	if !p.Before(Period{Year: 2024, Month: 7}) || !p.Before(Period{Year: 2025, Month: 1}) {
		t.Error("expected 2024-06 to sort before later periods")
	}
	if p.Before(Period{Year: 2023, Month: 12}) {
		t.Error("expected 2024-06 not to sort before 2023-12")
	}

	for _, bad := range []Period{{Year: 2024, Month: 0}, {Year: 2024, Month: 13}, {Year: 0, Month: 5}} {
		if bad.Valid() {
			t.Errorf("expected %+v to be invalid", bad)
		}
	}
}

func TestTransactionJSON(t *testing.T) {
	desc := "groceries"
	txn := Transaction{
		Base:        Base{ID: "txn-1"},
		UserID:      "user-1",
		Amount:      decimal.RequireFromString("12.50"),
		Category:    CategoryFood,
		Description: &desc,
		Date:        time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(txn)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["id"] != "txn-1" {
		t.Errorf("expected id txn-1, got %v", out["id"])
	}
	if out["category_display"] != "Food" {
		t.Errorf("expected category_display Food, got %v", out["category_display"])
	}
	if out["amount"] != "12.50" {
		t.Errorf("expected amount 12.50, got %v", out["amount"])
	}
}

func TestBudgetJSON(t *testing.T) {
	b := Budget{
		Base:        Base{ID: "budget-1"},
		UserID:      "user-1",
		Amount:      decimal.RequireFromString("500"),
		SpentAmount: decimal.RequireFromString("120.5"),
		Month:       6,
		Year:        2024,
	}

	raw, err := json.Marshal(&b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["id"] != "budget-1" {
		t.Errorf("expected id budget-1, got %v", out["id"])
	}
	if out["amount"] != "500.00" {
		t.Errorf("expected amount 500.00, got %v", out["amount"])
	}
	if out["spent_amount"] != "120.50" {
		t.Errorf("expected spent_amount 120.50, got %v", out["spent_amount"])
	}
	if out["month"] != float64(6) {
		t.Errorf("expected month 6, got %v", out["month"])
	}
}

func TestBudgetRemaining(t *testing.T) {
	b := Budget{Amount: decimal.RequireFromString("500.00"), SpentAmount: decimal.RequireFromString("120.50")}
	if !b.Remaining().Equal(decimal.RequireFromString("379.50")) {
		t.Errorf("expected 379.50, got %s", b.Remaining())
	}
}
