// Command token prints a signed access token for local development.
// Identities are issued by an external service in deployed environments.
//
//	token <user-id> [ttl]
package main

import (
	"fmt"
	"os"
	"time"

	"budgettracker/internal/config"
	"budgettracker/internal/logger"
	"budgettracker/internal/middleware"
)

const defaultTTL = 24 * time.Hour

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("token error: %v", err)
	}
}

func run(args []string) error {
	if len(args) < 1 || args[0] == "" {
		return fmt.Errorf("usage: token <user-id> [ttl]")
	}

	ttl := defaultTTL
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid ttl: %w", err)
		}
		ttl = d
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	token, err := middleware.GenerateAccessToken([]byte(cfg.JWTSecret), args[0], ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Println(token)
	return nil
}
