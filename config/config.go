package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"energytrader/internal/adapters/logger" // Import the logger package for its level parser
)

// Config holds all application configuration.
type Config struct {
	// HTTP
	HTTPAddr string

	// Trade Limits
	MaxEnergyAmount float64 // Upper bound per trade (exclusive lower bound is 0)
	MaxPricePerUnit float64 // Upper bound per unit price

	// Seed Balances
	// The seeded users form the registered-user set; there is no runtime
	// registration operation.
	SeedBalances map[string]float64

	// Database (empty DBPath disables the durable trade archive)
	DBPath string

	// Logging
	LogLevel logger.Level
}

const defaultSeedBalances = "user123:10000,user456:5000,user789:7500"

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.MaxEnergyAmount, err = getEnvAsFloatRequired("MAX_ENERGY_AMOUNT", 10000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_ENERGY_AMOUNT: %v", err))
	} else if cfg.MaxEnergyAmount <= 0 {
		errs = append(errs, "MAX_ENERGY_AMOUNT must be positive")
	}

	cfg.MaxPricePerUnit, err = getEnvAsFloatRequired("MAX_PRICE_PER_UNIT", 1000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_PRICE_PER_UNIT: %v", err))
	} else if cfg.MaxPricePerUnit <= 0 {
		errs = append(errs, "MAX_PRICE_PER_UNIT must be positive")
	}

	cfg.SeedBalances, err = ParseSeedBalances(getEnv("SEED_BALANCES", defaultSeedBalances))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SEED_BALANCES: %v", err))
	}

	cfg.DBPath = getEnv("DB_PATH", "")

	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// ParseSeedBalances parses a "user:balance,user:balance" list into the seed
// balance map.
func ParseSeedBalances(raw string) (map[string]float64, error) {
	balances := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, balanceStr, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("entry %q is not in user:balance form", pair)
		}
		user = strings.TrimSpace(user)
		if user == "" {
			return nil, fmt.Errorf("entry %q has an empty user id", pair)
		}
		balance, err := strconv.ParseFloat(strings.TrimSpace(balanceStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid balance for user %q: %w", user, err)
		}
		if balance < 0 {
			return nil, fmt.Errorf("balance for user %q cannot be negative", user)
		}
		if _, exists := balances[user]; exists {
			return nil, fmt.Errorf("user %q listed more than once", user)
		}
		balances[user] = balance
	}
	if len(balances) == 0 {
		return nil, fmt.Errorf("no seed balances configured")
	}
	return balances, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
