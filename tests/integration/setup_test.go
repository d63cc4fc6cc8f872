package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"budgettracker/internal/clock"
	"budgettracker/internal/config"
	"budgettracker/internal/logger"
	"budgettracker/internal/metrics"
	"budgettracker/internal/middleware"
	"budgettracker/internal/server"
	"budgettracker/internal/services"
	"budgettracker/internal/testutil"
	"budgettracker/internal/validator"
)

const jwtSecret = "integration-secret"

// june15 is the default wall clock of the test app.
var june15 = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Clock  *clock.Fixed
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

type gormPinger struct{ db *gorm.DB }

func (p gormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database, with the budget sync period resolved by request time.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithMode(t, services.SyncByRequestTime)
}

func setupAppWithMode(t *testing.T, mode services.SyncMode) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	clk := clock.NewFixed(june15)

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("failed to register metrics: %v", err)
	}

	cfg := &config.Config{
		Env:              "test",
		AllowedOrigins:   []string{"*"},
		JWTSecret:        jwtSecret,
		BudgetSyncPeriod: string(mode),
	}

	syncer := services.NewBudgetSyncer(clk, mode, nil)
	router := server.NewRouter(
		server.Options{Config: cfg, DB: gormPinger{db: db}, Gatherer: reg},
		server.Services{
			Transactions: services.NewTransactionService(db, syncer),
			Budgets:      services.NewBudgetService(db),
			Reports:      services.NewReportService(db, clk),
		},
	)

	return &testApp{DB: db, Clock: clk, Router: router}
}

// newUser mints an access token for a fresh user.
func newUser(t *testing.T) (userID, token string) {
	t.Helper()
	userID = testutil.NewUserID()
	token, err := middleware.GenerateAccessToken([]byte(jwtSecret), userID, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return userID, token
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// parseJSONArray parses the response body into a list of objects.
func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// createBudget creates a budget and returns its ID.
func (app *testApp) createBudget(t *testing.T, token, amount string, month, year int) string {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/v1/budgets",
		fmt.Sprintf(`{"amount":%q,"month":%d,"year":%d}`, amount, month, year), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(string)
}

// createTransaction creates a transaction against an existing budget and
// returns the response body.
func (app *testApp) createTransaction(t *testing.T, token, amount, category string) map[string]interface{} {
	t.Helper()
	rec := app.request(http.MethodPost, "/api/v1/transactions",
		fmt.Sprintf(`{"amount":%q,"category":%q}`, amount, category), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

func assertBudgetState(t *testing.T, body map[string]interface{}, spent, remaining string) {
	t.Helper()
	if body["spent_amount"] != spent {
		t.Errorf("expected spent_amount %s, got %v", spent, body["spent_amount"])
	}
	if body["remaining_budget"] != remaining {
		t.Errorf("expected remaining_budget %s, got %v", remaining, body["remaining_budget"])
	}
}
