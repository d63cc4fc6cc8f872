// Package server assembles the HTTP router: middleware, operational
// endpoints and the versioned API routes.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"budgettracker/internal/config"
	_ "budgettracker/internal/docs" // Import swagger docs
	"budgettracker/internal/handlers"
	"budgettracker/internal/middleware"
	"budgettracker/internal/services"
)

// Services are the business services the API routes are served by.
type Services struct {
	Transactions services.TransactionServicer
	Budgets      services.BudgetServicer
	Reports      services.ReportServicer
}

// Options configure the router.
type Options struct {
	Config *config.Config
	// DB backs the health endpoint.
	DB handlers.Pinger
	// Gatherer serves /metrics; nil uses the default Prometheus gatherer.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the Gin engine with every route registered.
func NewRouter(opts Options, svc Services) *gin.Engine {
	cfg := opts.Config

	router := gin.New()
	_ = router.SetTrustedProxies(nil)

	// Logging and metrics wrap Recovery so that recovered panics are
	// recorded as 500s.
	router.Use(requestid.New())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.Use(middleware.ErrorHandler())
	router.NoRoute(middleware.NotFound())

	// Operational endpoints
	router.GET("/health", handlers.NewHealthHandler(opts.DB).GetHealth)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if cfg.MetricsAPIKey != "" {
		router.GET("/metrics", middleware.APIKeyAuth(cfg.MetricsAPIKey), metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}

	if !cfg.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.EnablePprof {
		pprof.Register(router)
	}

	// API v1 group; every route is authenticated
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	registerRoutes(v1, svc)

	return router
}

func registerRoutes(v1 *gin.RouterGroup, svc Services) {
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets)
	categoryHandler := handlers.NewCategoryHandler()
	reportHandler := handlers.NewReportHandler(svc.Reports)

	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	v1.GET("/categories", categoryHandler.GetCategories)

	v1.GET("/budget-summary", reportHandler.GetBudgetSummary)
	v1.GET("/spending-by-category", reportHandler.GetSpendingByCategory)
	v1.GET("/total-expenses-over-time", reportHandler.GetExpensesOverTime)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
