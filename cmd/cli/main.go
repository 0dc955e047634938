package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-insights/internal/classify"
	"github.com/dvloznov/expense-insights/internal/config"
	"github.com/dvloznov/expense-insights/internal/csvio"
	"github.com/dvloznov/expense-insights/internal/logger"
	"github.com/dvloznov/expense-insights/internal/normalize"
	"github.com/dvloznov/expense-insights/internal/pipeline"
	"github.com/dvloznov/expense-insights/internal/report"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "normalize":
		runNormalize(log)
	case "cache":
		runCache(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expense Insights CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze    Run the full pipeline on a ledger CSV")
	fmt.Println("  normalize  Clean a ledger CSV and report what was dropped")
	fmt.Println("  cache      Inspect the classification cache")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAnalyze(log zerolog.Logger) {
	cfg := config.Load()

	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	input := fs.String("input", "", "Path to the ledger CSV (required)")
	categoriesFlag := fs.String("categories", "", "Comma-separated allowed categories (default from config)")
	outDir := fs.String("out-dir", cfg.DataDir, "Directory for the annotated output table")
	model := fs.String("model", cfg.ModelName, "Classification model name")
	workers := fs.Int("workers", cfg.ClassifyWorkers, "Concurrent classification calls")
	timeout := fs.Duration("timeout", cfg.OracleTimeout, "Per-call oracle timeout")
	chartFlag := fs.Bool("chart", false, "Also write a monthly-trend PNG chart")
	fs.Parse(os.Args[2:])

	if *input == "" {
		log.Fatal().Msg("Error: --input is required")
	}

	cfg.ModelName = *model
	cfg.ClassifyWorkers = *workers
	cfg.OracleTimeout = *timeout
	if *categoriesFlag != "" {
		cfg.Categories = config.ParseCategories(*categoriesFlag)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	oracle, err := classify.NewGeminiOracle(ctx, cfg.ModelName)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating Gemini oracle failed")
	}

	state, err := pipeline.Run(ctx, pipeline.Options{
		InputPath:     *input,
		OutputDir:     *outDir,
		Categories:    cfg.Categories,
		Oracle:        oracle,
		Cache:         classify.NewCache(cfg.CachePath),
		Model:         cfg.ModelName,
		OracleTimeout: cfg.OracleTimeout,
		Workers:       cfg.ClassifyWorkers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	fmt.Println("\nCategory Summary")
	report.RenderSummary(os.Stdout, state.Summary)

	if len(state.Trend) > 0 {
		fmt.Println("\nMonthly Trend")
		report.RenderTrend(os.Stdout, state.Trend)
	} else {
		log.Warn().Msg("No dated rows, monthly trend is empty")
	}

	if *chartFlag {
		chartPath := filepath.Join(*outDir, "monthly_trend.png")
		if err := report.WriteTrendChart(chartPath, state.Trend); err != nil {
			log.Warn().Err(err).Msg("Skipping trend chart")
		} else {
			log.Info().Str("path", chartPath).Msg("Trend chart saved")
		}
	}
}

func runNormalize(log zerolog.Logger) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	input := fs.String("input", "", "Path to the ledger CSV (required)")
	fs.Parse(os.Args[2:])

	if *input == "" {
		log.Fatal().Msg("Error: --input is required")
	}

	raw, err := csvio.Load(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading input failed")
	}

	clean, stats, err := normalize.Clean(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("Normalization failed")
	}

	fmt.Printf("Input rows:        %d\n", len(raw.Records))
	fmt.Printf("Clean rows:        %d\n", clean.Len())
	fmt.Printf("Dropped:           %d\n", stats.Total())
	fmt.Printf("  missing values:  %d\n", stats.MissingRequired)
	fmt.Printf("  bad dates:       %d\n", stats.BadDate)
	fmt.Printf("  bad amounts:     %d\n", stats.BadAmount)
	fmt.Printf("  blank text:      %d\n", stats.BlankDescription)
	fmt.Printf("Columns:           %s\n", strings.Join(clean.Columns(), ", "))
}

func runCache(log zerolog.Logger) {
	cfg := config.Load()

	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	path := fs.String("path", cfg.CachePath, "Path to the classification cache file")
	fs.Parse(os.Args[2:])

	cache := classify.NewCache(*path)
	fmt.Printf("Cache file: %s\n", cache.Path())
	fmt.Printf("Entries:    %d\n", cache.Len())
}
