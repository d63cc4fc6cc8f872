// Package logger provides structured logging using Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every component that logs about a request or a
// budget sync, so log queries can rely on them.
const (
	FieldRequestID     = "request_id"
	FieldUserID        = "user_id"
	FieldBudgetID      = "budget_id"
	FieldTransactionID = "transaction_id"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
)

// Init initializes the global logger for the given environment.
// For "production", it uses a JSON encoder with ISO8601 timestamps. For all
// other environments, it uses a human-readable console encoder.
// Calling Init again is a no-op.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		return
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	base, err := cfg.Build()
	if err != nil {
		// Fallback to nop logger if initialization fails.
		base = zap.NewNop()
	}
	sugar = base.Sugar()
}

// Replace swaps the global logger, e.g. for an observer core in tests.
// It returns a function restoring the previous logger.
func Replace(l *zap.Logger) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := sugar
	sugar = l.Sugar()
	return func() {
		mu.Lock()
		sugar = prev
		mu.Unlock()
	}
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	l := sugar
	mu.RUnlock()
	if l == nil {
		Init("development")
		mu.RLock()
		l = sugar
		mu.RUnlock()
	}
	return l
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
