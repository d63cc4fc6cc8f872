package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgettracker/internal/clock"
	"budgettracker/internal/events"
	"budgettracker/internal/models"
	"budgettracker/internal/testutil"
)

var june15 = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type syncFixture struct {
	db        *gorm.DB
	clock     *clock.Fixed
	publisher *recordingPublisher
	svc       TransactionServicer
	userID    string
}

func newSyncFixture(t *testing.T, mode SyncMode) *syncFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clk := clock.NewFixed(june15)
	pub := &recordingPublisher{}
	return &syncFixture{
		db:        db,
		clock:     clk,
		publisher: pub,
		svc:       NewTransactionService(db, NewBudgetSyncer(clk, mode, pub)),
		userID:    testutil.NewUserID(),
	}
}

func decPtr(s string) *decimal.Decimal {
	d := testutil.Dec(s)
	return &d
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("adds_to_current_budget", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		budget := testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

		desc := "dinner"
		result, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{
			Amount:      testutil.Dec("120.50"),
			Category:    models.CategoryFood,
			Description: &desc,
		})
		testutil.AssertNoError(t, err)

		if result.Transaction.ID == "" {
			t.Fatal("expected transaction ID")
		}
		if !result.Transaction.Date.Equal(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected today's date, got %s", result.Transaction.Date)
		}
		if result.Budget == nil {
			t.Fatal("expected budget snapshot")
		}
		testutil.AssertDecimal(t, "120.50", result.Budget.SpentAmount.Decimal)
		testutil.AssertDecimal(t, "379.50", result.Budget.RemainingBudget.Decimal)

		reloaded := testutil.ReloadBudget(t, f.db, budget.ID)
		testutil.AssertDecimal(t, "120.50", reloaded.SpentAmount)

		if len(f.publisher.events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(f.publisher.events))
		}
		e := f.publisher.events[0]
		if e.Cause != events.CauseTransactionCreated || e.BudgetID != budget.ID || e.TransactionID != result.Transaction.ID {
			t.Errorf("unexpected event: %+v", e)
		}
	})

	t.Run("default_category", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

		result, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("5")})
		testutil.AssertNoError(t, err)
		if result.Transaction.Category != models.CategoryOther {
			t.Errorf("expected category Other, got %s", result.Transaction.Category)
		}
		if result.Transaction.Description != nil {
			t.Errorf("expected nil description, got %q", *result.Transaction.Description)
		}
	})

	t.Run("no_budget_keeps_transaction", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		f.clock.Set(time.Date(2024, time.July, 3, 9, 0, 0, 0, time.UTC))
		// Budget exists, but for another month.
		testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

		result, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{
			Amount:   testutil.Dec("42.00"),
			Category: models.CategoryTravel,
		})
		testutil.AssertNoError(t, err)
		if result.Budget != nil {
			t.Errorf("expected no budget snapshot, got %+v", result.Budget)
		}

		var count int64
		f.db.Model(&models.Transaction{}).Where("user_id = ?", f.userID).Count(&count)
		if count != 1 {
			t.Errorf("expected transaction to persist, found %d", count)
		}
		if len(f.publisher.events) != 0 {
			t.Errorf("expected no events, got %d", len(f.publisher.events))
		}
	})

	t.Run("other_users_budget_untouched", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		other := testutil.CreateTestBudget(t, f.db, testutil.NewUserID(), 6, 2024, "500.00")

		result, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("10")})
		testutil.AssertNoError(t, err)
		if result.Budget != nil {
			t.Error("expected no budget snapshot")
		}
		testutil.AssertDecimal(t, "0", testutil.ReloadBudget(t, f.db, other.ID).SpentAmount)
	})

	t.Run("validation", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		budget := testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

		_, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("1.234")})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		_, err = f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("1"), Category: "Groceries"})
		testutil.AssertAppError(t, err, "INVALID_CATEGORY")

		testutil.AssertDecimal(t, "0", testutil.ReloadBudget(t, f.db, budget.ID).SpentAmount)
	})

	t.Run("publish_failure_does_not_fail_write", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		f.publisher.err = errors.New("broker down")
		testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

		result, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("1")})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "1", result.Budget.SpentAmount.Decimal)
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("moves_spent_by_difference", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		budget := testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")
		created, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("120.50")})
		testutil.AssertNoError(t, err)

		food := models.CategoryFood
		result, err := f.svc.UpdateTransaction(ctx, f.userID, created.Transaction.ID, TransactionUpdate{
			Amount:   decPtr("200.00"),
			Category: &food,
		})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "200", result.Transaction.Amount)
		if result.Transaction.Category != models.CategoryFood {
			t.Errorf("expected category Food, got %s", result.Transaction.Category)
		}
		testutil.AssertDecimal(t, "200.00", result.Budget.SpentAmount.Decimal)
		testutil.AssertDecimal(t, "300.00", result.Budget.RemainingBudget.Decimal)
		testutil.AssertDecimal(t, "200", testutil.ReloadBudget(t, f.db, budget.ID).SpentAmount)
	})

	t.Run("description_only_keeps_spent", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")
		created, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("50")})
		testutil.AssertNoError(t, err)

		desc := "taxi"
		result, err := f.svc.UpdateTransaction(ctx, f.userID, created.Transaction.ID, TransactionUpdate{Description: &desc})
		testutil.AssertNoError(t, err)
		if result.Transaction.Description == nil || *result.Transaction.Description != "taxi" {
			t.Errorf("expected description taxi, got %v", result.Transaction.Description)
		}
		testutil.AssertDecimal(t, "50", result.Budget.SpentAmount.Decimal)
	})

	t.Run("missing_budget_changes_nothing", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		txn := testutil.CreateTestTransaction(t, f.db, f.userID, "10.00", models.CategoryFood, june15)

		_, err := f.svc.UpdateTransaction(ctx, f.userID, txn.ID, TransactionUpdate{Amount: decPtr("99")})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

		stored, err := f.svc.GetTransactionByID(ctx, f.userID, txn.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "10", stored.Amount)
	})

	t.Run("missing_transaction", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		budget := testutil.CreateTestBudgetWithSpent(t, f.db, f.userID, 6, 2024, "500", "20")

		_, err := f.svc.UpdateTransaction(ctx, f.userID, "missing", TransactionUpdate{Amount: decPtr("5")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
		testutil.AssertDecimal(t, "20", testutil.ReloadBudget(t, f.db, budget.ID).SpentAmount)
	})

	t.Run("other_users_transaction", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500")
		foreign := testutil.CreateTestTransaction(t, f.db, testutil.NewUserID(), "10", models.CategoryFood, june15)

		_, err := f.svc.UpdateTransaction(ctx, f.userID, foreign.ID, TransactionUpdate{Amount: decPtr("5")})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("invalid_fields", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		bad := models.Category("Rent")

		_, err := f.svc.UpdateTransaction(ctx, f.userID, "any", TransactionUpdate{Category: &bad})
		testutil.AssertAppError(t, err, "INVALID_CATEGORY")

		_, err = f.svc.UpdateTransaction(ctx, f.userID, "any", TransactionUpdate{Amount: decPtr("123456789")})
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("subtracts_and_deletes", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		budget := testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")
		created, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("120.50")})
		testutil.AssertNoError(t, err)

		snap, err := f.svc.DeleteTransaction(ctx, f.userID, created.Transaction.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "0.00", snap.SpentAmount.Decimal)
		testutil.AssertDecimal(t, "500.00", snap.RemainingBudget.Decimal)

		_, err = f.svc.GetTransactionByID(ctx, f.userID, created.Transaction.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
		testutil.AssertDecimal(t, "0", testutil.ReloadBudget(t, f.db, budget.ID).SpentAmount)

		last := f.publisher.events[len(f.publisher.events)-1]
		if last.Cause != events.CauseTransactionDeleted {
			t.Errorf("expected delete event, got %s", last.Cause)
		}
	})

	t.Run("missing_budget_keeps_transaction", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		txn := testutil.CreateTestTransaction(t, f.db, f.userID, "10.00", models.CategoryFood, june15)

		_, err := f.svc.DeleteTransaction(ctx, f.userID, txn.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

		_, err = f.svc.GetTransactionByID(ctx, f.userID, txn.ID)
		testutil.AssertNoError(t, err)
	})

	t.Run("missing_transaction", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

		_, err := f.svc.DeleteTransaction(ctx, f.userID, "missing")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestSyncPeriodModes(t *testing.T) {
	ctx := context.Background()
	mayTxnDate := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	t.Run("request_time_adjusts_current_month", func(t *testing.T) {
		f := newSyncFixture(t, SyncByRequestTime)
		may := testutil.CreateTestBudgetWithSpent(t, f.db, f.userID, 5, 2024, "500", "30")
		june := testutil.CreateTestBudgetWithSpent(t, f.db, f.userID, 6, 2024, "500", "100")
		txn := testutil.CreateTestTransaction(t, f.db, f.userID, "30", models.CategoryFood, mayTxnDate)

		_, err := f.svc.DeleteTransaction(ctx, f.userID, txn.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "30", testutil.ReloadBudget(t, f.db, may.ID).SpentAmount)
		testutil.AssertDecimal(t, "70", testutil.ReloadBudget(t, f.db, june.ID).SpentAmount)
	})

	t.Run("transaction_date_adjusts_own_month", func(t *testing.T) {
		f := newSyncFixture(t, SyncByTransactionDate)
		may := testutil.CreateTestBudgetWithSpent(t, f.db, f.userID, 5, 2024, "500", "30")
		june := testutil.CreateTestBudgetWithSpent(t, f.db, f.userID, 6, 2024, "500", "100")
		txn := testutil.CreateTestTransaction(t, f.db, f.userID, "30", models.CategoryFood, mayTxnDate)

		result, err := f.svc.UpdateTransaction(ctx, f.userID, txn.ID, TransactionUpdate{Amount: decPtr("45")})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "45", result.Budget.SpentAmount.Decimal)

		testutil.AssertDecimal(t, "45", testutil.ReloadBudget(t, f.db, may.ID).SpentAmount)
		testutil.AssertDecimal(t, "100", testutil.ReloadBudget(t, f.db, june.ID).SpentAmount)
	})
}

func TestParseSyncMode(t *testing.T) {
	for _, in := range []string{"request", "transaction"} {
		if _, err := ParseSyncMode(in); err != nil {
			t.Errorf("ParseSyncMode(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseSyncMode("weekly"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestConcurrentCreatesDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, SyncByRequestTime)
	budget := testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "1000.00")

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("1.25")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		testutil.AssertNoError(t, err)
	}
	testutil.AssertDecimal(t, "25.00", testutil.ReloadBudget(t, f.db, budget.ID).SpentAmount)
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t, SyncByRequestTime)
	testutil.CreateTestBudget(t, f.db, f.userID, 6, 2024, "500.00")

	created, err := f.svc.CreateTransaction(ctx, f.userID, TransactionInput{Amount: testutil.Dec("120.50")})
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "120.50", created.Budget.SpentAmount.Decimal)
	testutil.AssertDecimal(t, "379.50", created.Budget.RemainingBudget.Decimal)
	assertSnapshotJSON(t, created.Budget, `{"spent_amount":"120.50","remaining_budget":"379.50"}`)

	updated, err := f.svc.UpdateTransaction(ctx, f.userID, created.Transaction.ID, TransactionUpdate{Amount: decPtr("200.00")})
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "200.00", updated.Budget.SpentAmount.Decimal)
	testutil.AssertDecimal(t, "300.00", updated.Budget.RemainingBudget.Decimal)
	assertSnapshotJSON(t, updated.Budget, `{"spent_amount":"200.00","remaining_budget":"300.00"}`)

	deleted, err := f.svc.DeleteTransaction(ctx, f.userID, created.Transaction.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "0.00", deleted.SpentAmount.Decimal)
	testutil.AssertDecimal(t, "500.00", deleted.RemainingBudget.Decimal)
	assertSnapshotJSON(t, deleted, `{"spent_amount":"0.00","remaining_budget":"500.00"}`)

	list, err := f.svc.GetUserTransactions(ctx, f.userID)
	testutil.AssertNoError(t, err)
	if len(list) != 0 {
		t.Errorf("expected no transactions left, got %d", len(list))
	}
}

func assertSnapshotJSON(t *testing.T, snap *BudgetSnapshot, want string) {
	t.Helper()
	got, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if string(got) != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
