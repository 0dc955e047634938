// Package pipeline orchestrates the full analysis run: load the raw ledger,
// normalize it, categorize via the cached oracle, flag anomalies, aggregate,
// and persist the annotated table. The stages themselves are pure functions
// in their own packages; this package only sequences them and logs progress.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-insights/internal/anomaly"
	"github.com/dvloznov/expense-insights/internal/classify"
	"github.com/dvloznov/expense-insights/internal/csvio"
	"github.com/dvloznov/expense-insights/internal/domain"
	"github.com/dvloznov/expense-insights/internal/logger"
	"github.com/dvloznov/expense-insights/internal/normalize"
	"github.com/dvloznov/expense-insights/internal/report"
)

// Options configures a single pipeline run.
type Options struct {
	InputPath  string
	OutputDir  string   // annotated CSV destination; "" skips persistence
	Categories []string // allowed category set handed to the oracle

	Oracle classify.Oracle
	Cache  *classify.Cache
	Model  string // model identifier baked into cache keys

	OracleTimeout time.Duration // 0 = classify.DefaultOracleTimeout
	Workers       int           // concurrent classifications; <2 = sequential
}

// State carries intermediate results across steps. Each step reads what the
// previous ones produced and fills in its own slot.
type State struct {
	RunID string

	Raw       *domain.RawTable
	Clean     *domain.Table
	DropStats normalize.DropStats
	Labeled   *domain.Table
	Annotated *domain.Table

	Summary []report.CategorySummary
	Trend   []report.MonthlyTotal

	OutputPath string // set when the annotated table was persisted
}

// Step is a single stage of the run.
type Step interface {
	Name() string
	Execute(ctx context.Context, opts *Options, state *State) error
}

// Run executes all steps in order. The first failing step aborts the run;
// per-row data problems never fail a step, only missing columns and I/O do.
func Run(ctx context.Context, opts Options) (*State, error) {
	log := logger.FromContext(ctx)

	state := &State{RunID: uuid.NewString()}
	steps := []Step{
		&LoadStep{},
		&NormalizeStep{},
		&CategorizeStep{},
		&DetectStep{},
		&SummarizeStep{},
		&PersistStep{},
	}

	log.Info().Str("run_id", state.RunID).Str("input", opts.InputPath).Msg("Starting analysis run")

	for _, step := range steps {
		started := time.Now()
		if err := step.Execute(ctx, &opts, state); err != nil {
			log.Error().Err(err).Str("run_id", state.RunID).Str("step", step.Name()).Msg("Pipeline step failed")
			return nil, fmt.Errorf("pipeline: %s: %w", step.Name(), err)
		}
		log.Debug().Str("run_id", state.RunID).Str("step", step.Name()).Dur("elapsed", time.Since(started)).Msg("Pipeline step finished")
	}

	log.Info().
		Str("run_id", state.RunID).
		Int("rows", state.Annotated.Len()).
		Int("dropped", state.DropStats.Total()).
		Msg("Analysis run finished")

	return state, nil
}

// LoadStep reads the input CSV into a raw table.
type LoadStep struct{}

func (s *LoadStep) Name() string { return "load" }

func (s *LoadStep) Execute(ctx context.Context, opts *Options, state *State) error {
	raw, err := csvio.Load(opts.InputPath)
	if err != nil {
		return err
	}
	state.Raw = raw
	return nil
}

// NormalizeStep cleans the raw table and records what was dropped.
type NormalizeStep struct{}

func (s *NormalizeStep) Name() string { return "normalize" }

func (s *NormalizeStep) Execute(ctx context.Context, opts *Options, state *State) error {
	clean, stats, err := normalize.Clean(state.Raw)
	if err != nil {
		return err
	}
	state.Clean = clean
	state.DropStats = stats

	if stats.Total() > 0 {
		log := logger.FromContext(ctx)
		log.Warn().
			Int("missing_required", stats.MissingRequired).
			Int("bad_date", stats.BadDate).
			Int("bad_amount", stats.BadAmount).
			Int("blank_description", stats.BlankDescription).
			Msg("Dropped unusable rows during normalization")
	}
	return nil
}

// CategorizeStep assigns a category to every row via the cached oracle.
type CategorizeStep struct{}

func (s *CategorizeStep) Name() string { return "categorize" }

func (s *CategorizeStep) Execute(ctx context.Context, opts *Options, state *State) error {
	categorizer := classify.NewCategorizer(opts.Oracle, opts.Cache, opts.Model)
	categorizer.Timeout = opts.OracleTimeout
	categorizer.Workers = opts.Workers
	categorizer.Log = logger.FromContext(ctx)

	labeled, err := categorizer.Categorize(ctx, state.Clean, opts.Categories)
	if err != nil {
		return err
	}
	state.Labeled = labeled
	return nil
}

// DetectStep flags anomalous rows.
type DetectStep struct{}

func (s *DetectStep) Name() string { return "detect" }

func (s *DetectStep) Execute(ctx context.Context, opts *Options, state *State) error {
	annotated, err := anomaly.Detect(state.Labeled)
	if err != nil {
		return err
	}
	state.Annotated = annotated
	return nil
}

// SummarizeStep aggregates the annotated table.
type SummarizeStep struct{}

func (s *SummarizeStep) Name() string { return "summarize" }

func (s *SummarizeStep) Execute(ctx context.Context, opts *Options, state *State) error {
	summary, trend, err := report.Summarize(state.Annotated)
	if err != nil {
		return err
	}
	state.Summary = summary
	state.Trend = trend
	return nil
}

// PersistStep writes the annotated table to the output directory. Skipped
// when no directory is configured.
type PersistStep struct{}

func (s *PersistStep) Name() string { return "persist" }

func (s *PersistStep) Execute(ctx context.Context, opts *Options, state *State) error {
	if opts.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	outPath := filepath.Join(opts.OutputDir, csvio.OutputName(opts.InputPath, time.Now()))
	if err := csvio.Save(outPath, state.Annotated); err != nil {
		return err
	}
	state.OutputPath = outPath

	log := logger.FromContext(ctx)
	log.Info().Str("path", outPath).Msg("Annotated table saved")
	return nil
}

// RunWithLogger is a convenience wrapper that places log into the context
// before running.
func RunWithLogger(ctx context.Context, log zerolog.Logger, opts Options) (*State, error) {
	return Run(logger.WithContext(ctx, log), opts)
}
