package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Budget sync period modes.
const (
	// SyncPeriodRequest resolves the budget from the clock at request time.
	SyncPeriodRequest = "request"
	// SyncPeriodTransaction resolves the budget from the transaction's own date.
	SyncPeriodTransaction = "transaction"
)

// Config holds application configuration
type Config struct {
	// Server
	Env             string
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// Database
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// JWT
	JWTSecret string

	// Budget sync
	BudgetSyncPeriod string

	// Events
	AMQPURL      string
	AMQPExchange string

	// MetricsAPIKey guards /metrics when set.
	MetricsAPIKey string
	EnablePprof   bool
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:             getEnv("ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		// Database
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "budgettracker"),
		DBPassword:        getEnv("DB_PASSWORD", "budgettracker"),
		DBName:            getEnv("DB_NAME", "budgettracker"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Budget sync
		BudgetSyncPeriod: strings.ToLower(getEnv("BUDGET_SYNC_PERIOD", SyncPeriodRequest)),

		// Events
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgettracker.events"),

		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),
		EnablePprof:   getEnv("ENABLE_PPROF", "") == "true",
	}

	if config.JWTSecret == "" && !config.IsProduction() {
		config.JWTSecret = "fallback-secret-key-for-dev-only"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	switch c.BudgetSyncPeriod {
	case SyncPeriodRequest, SyncPeriodTransaction:
	default:
		return fmt.Errorf("invalid BUDGET_SYNC_PERIOD %q (use %q or %q)",
			c.BudgetSyncPeriod, SyncPeriodRequest, SyncPeriodTransaction)
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseURL returns the postgres URL used by the migration runner.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
