// Package config loads runtime configuration from environment variables,
// with a .env file picked up when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCategories is the allowed category set used when none is
// configured. "Other" must stay in the list: it is the fallback for every
// classification failure.
var DefaultCategories = []string{"Travel", "Meals", "Software", "Utilities", "Other"}

// Config holds everything the CLI needs to run the pipeline.
type Config struct {
	// ModelName identifies the classification model; it is part of every
	// cache key, so switching models reclassifies from scratch.
	ModelName string

	// CachePath is the classification cache file.
	CachePath string

	// DataDir receives annotated output tables and chart files.
	DataDir string

	// OracleTimeout bounds a single classification call.
	OracleTimeout time.Duration

	// ClassifyWorkers is the number of concurrent oracle calls; 1 keeps
	// the sequential reference behavior.
	ClassifyWorkers int

	// Categories is the allowed category set.
	Categories []string
}

// Load reads configuration from the environment. A missing .env file is
// fine; explicit environment variables always win over defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ModelName:       getEnv("EXPENSE_MODEL", "gemini-2.5-flash"),
		CachePath:       getEnv("EXPENSE_CACHE_PATH", "./data/classification_cache.json"),
		DataDir:         getEnv("EXPENSE_DATA_DIR", "./data"),
		OracleTimeout:   getEnvDuration("EXPENSE_ORACLE_TIMEOUT", 60*time.Second),
		ClassifyWorkers: getEnvInt("EXPENSE_CLASSIFY_WORKERS", 1),
		Categories:      getEnvList("EXPENSE_CATEGORIES", DefaultCategories),
	}
}

// Validate reports configuration problems as one combined error.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.ModelName) == "" {
		problems = append(problems, "model name cannot be empty")
	}
	if strings.TrimSpace(c.CachePath) == "" {
		problems = append(problems, "cache path cannot be empty")
	}
	if c.OracleTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("oracle timeout must be positive, got %s", c.OracleTimeout))
	}
	if c.ClassifyWorkers < 1 {
		problems = append(problems, fmt.Sprintf("classify workers must be at least 1, got %d", c.ClassifyWorkers))
	}
	if len(c.Categories) == 0 {
		problems = append(problems, "category list cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ParseCategories splits a comma-separated category list, trimming each
// entry and dropping blanks.
func ParseCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		if parsed := ParseCategories(value); len(parsed) > 0 {
			return parsed
		}
	}
	return fallback
}
