// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/brvalue/fleuriet/internal/utils"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	Valuation ValuationConfig
	Ranking   RankingWeights
	Fetch     FetchConfig

	// RefreshSchedule is the cron expression for the periodic full analysis.
	RefreshSchedule string

	// AccountMappingFile optionally points at a JSON file of account code
	// to category overrides, merged over the built-in mapping at startup.
	AccountMappingFile string

	// ExcludedTickers are skipped by the batch (financial institutions whose
	// statements do not fit the working-capital model).
	ExcludedTickers []string
}

// ValuationConfig holds the business constants of the valuation model.
type ValuationConfig struct {
	TaxRate           float64 // statutory IR+CSLL rate
	RiskFreeDefault   float64 // fallback when the SELIC fetch fails
	MarketRiskPremium float64
	PerpetuityGrowth  float64
	BetaLookbackYears int
}

// RankingWeights holds the five composite-ranking weights. They are
// normalized to sum to 1 before use.
type RankingWeights struct {
	ValueCreation float64 // EVA%
	FutureValue   float64 // EFV%
	Upside        float64
	Profitability float64
	Liquidity     float64
}

// FetchConfig controls pacing and retry behaviour for external data fetches.
type FetchConfig struct {
	BCBBaseURL        string
	MarketDataBaseURL string
	RequestTimeout    time.Duration
	PacingDelay       time.Duration // deliberate delay between consecutive external calls
	MaxRetries        int
	RetryBaseDelay    time.Duration // doubled per attempt, with jitter
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FLEURIET_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8001),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Valuation: ValuationConfig{
			TaxRate:           getEnvAsFloat("TAX_RATE", 0.34),
			RiskFreeDefault:   getEnvAsFloat("RISK_FREE_DEFAULT", 0.105),
			MarketRiskPremium: getEnvAsFloat("MARKET_RISK_PREMIUM", 0.08),
			PerpetuityGrowth:  getEnvAsFloat("PERPETUITY_GROWTH", 0.03),
			BetaLookbackYears: getEnvAsInt("BETA_LOOKBACK_YEARS", 5),
		},
		Ranking: RankingWeights{
			ValueCreation: getEnvAsFloat("WEIGHT_VALUE_CREATION", 0.3),
			FutureValue:   getEnvAsFloat("WEIGHT_FUTURE_VALUE", 0.3),
			Upside:        getEnvAsFloat("WEIGHT_UPSIDE", 0.2),
			Profitability: getEnvAsFloat("WEIGHT_PROFITABILITY", 0.1),
			Liquidity:     getEnvAsFloat("WEIGHT_LIQUIDITY", 0.1),
		},
		Fetch: FetchConfig{
			BCBBaseURL:        getEnv("BCB_BASE_URL", "https://api.bcb.gov.br"),
			MarketDataBaseURL: getEnv("MARKET_DATA_BASE_URL", ""),
			RequestTimeout:    time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
			PacingDelay:       time.Duration(getEnvAsInt("FETCH_PACING_MS", 500)) * time.Millisecond,
			MaxRetries:        getEnvAsInt("FETCH_MAX_RETRIES", 3),
			RetryBaseDelay:    time.Duration(getEnvAsInt("FETCH_RETRY_BASE_MS", 1000)) * time.Millisecond,
		},
		RefreshSchedule:    getEnv("REFRESH_SCHEDULE", "@daily"),
		AccountMappingFile: getEnv("ACCOUNT_MAPPING_FILE", ""),
		ExcludedTickers:    getEnvAsList("EXCLUDED_TICKERS", []string{"ITUB4", "BBDC4", "BBAS3", "SANB11", "B3SA3"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.Valuation.TaxRate < 0 || c.Valuation.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %v", c.Valuation.TaxRate)
	}
	if c.Valuation.PerpetuityGrowth < 0 {
		return fmt.Errorf("perpetuity growth must be non-negative, got %v", c.Valuation.PerpetuityGrowth)
	}
	if c.Fetch.MaxRetries < 1 {
		return fmt.Errorf("fetch max retries must be at least 1, got %d", c.Fetch.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if parsed := utils.ParseCSV(os.Getenv(key)); parsed != nil {
		return parsed
	}
	return defaultValue
}
