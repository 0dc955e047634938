package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"EXPENSE_MODEL", "EXPENSE_CACHE_PATH", "EXPENSE_DATA_DIR",
		"EXPENSE_ORACLE_TIMEOUT", "EXPENSE_CLASSIFY_WORKERS", "EXPENSE_CATEGORIES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ModelName == "" {
		t.Error("Expected a default model name")
	}
	if cfg.OracleTimeout != 60*time.Second {
		t.Errorf("Expected 60s default timeout, got %s", cfg.OracleTimeout)
	}
	if cfg.ClassifyWorkers != 1 {
		t.Errorf("Expected sequential default, got %d workers", cfg.ClassifyWorkers)
	}
	if len(cfg.Categories) != 5 {
		t.Errorf("Expected 5 default categories, got %v", cfg.Categories)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config must validate, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EXPENSE_MODEL", "test-model")
	t.Setenv("EXPENSE_ORACLE_TIMEOUT", "5s")
	t.Setenv("EXPENSE_CLASSIFY_WORKERS", "4")
	t.Setenv("EXPENSE_CATEGORIES", "Food, Rent ,Other")

	cfg := Load()
	if cfg.ModelName != "test-model" {
		t.Errorf("Expected test-model, got %q", cfg.ModelName)
	}
	if cfg.OracleTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %s", cfg.OracleTimeout)
	}
	if cfg.ClassifyWorkers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.ClassifyWorkers)
	}
	want := []string{"Food", "Rent", "Other"}
	if len(cfg.Categories) != len(want) {
		t.Fatalf("Expected %v, got %v", want, cfg.Categories)
	}
	for i := range want {
		if cfg.Categories[i] != want[i] {
			t.Errorf("Category %d: expected %q, got %q", i, want[i], cfg.Categories[i])
		}
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		ModelName:       " ",
		CachePath:       "",
		OracleTimeout:   0,
		ClassifyWorkers: 0,
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"A,B,C", 3},
		{" A , B ", 2},
		{"A,,B,", 2},
		{",", 0},
		{"", 0},
	}
	for _, tc := range tests {
		if got := len(ParseCategories(tc.raw)); got != tc.want {
			t.Errorf("ParseCategories(%q) len = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
