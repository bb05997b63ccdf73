package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/lifebench/internal/config"
	"github.com/torosent/lifebench/internal/extractor"
	"github.com/torosent/lifebench/internal/output"
	"github.com/torosent/lifebench/internal/runner"
	"github.com/torosent/lifebench/internal/space"
	"github.com/torosent/lifebench/internal/sweep"
	"github.com/torosent/lifebench/internal/threshold"
	"github.com/torosent/lifebench/internal/tracing"
	"github.com/torosent/lifebench/internal/trial"
)

const tracingShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Nothing below may launch a program until planning has succeeded.
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}
	targets, err := sweep.Plan(sweep.Request{
		Variants:   cfg.Variants,
		Modes:      cfg.Modes,
		BlockRows:  cfg.BlockRows,
		Comparison: sweep.Comparison(cfg.Compare),
		Threads:    cfg.Threads,
		Rule:       cfg.Rule,
	})
	if err != nil {
		return err
	}
	var baseline []runner.Row
	if cfg.Baseline != "" {
		if baseline, err = output.ReadTableFile(cfg.Baseline); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	}
	timing, err := extractor.New(cfg.TimePattern, cfg.TimeJSONPath)
	if err != nil {
		return err
	}

	runID := ulid.Make().String()
	logger := newLogger(stderr, cfg.LogLevel).With("run_id", runID)

	lock, err := acquireLock(cfg.EffectiveLockFile(), cfg.LockFile != "")
	if err != nil {
		return err
	}
	defer lock.Unlock()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	process, err := trial.NewProcessExecutor(trial.Options{Extractor: timing, Timeout: cfg.TrialTimeout})
	if err != nil {
		return err
	}
	var executor trial.Executor = trial.WithLogging(process, logger)

	opts := runner.Options{
		Resolver:      space.NewResolver(cfg.BuildDir),
		Workload:      space.Workload{Width: cfg.Width, Height: cfg.Height, Prob: cfg.Prob},
		Steps:         cfg.Steps,
		Repeats:       cfg.Repeats,
		Rule:          cfg.Rule,
		RatePerSecond: cfg.TrialRate,
		Logger:        logger,
		Progress:      stdout,
	}
	if cfg.JSONOutput {
		opts.Progress = io.Discard
	}
	if provider.Enabled() {
		executor = trial.WithTracing(executor, provider.Tracer())
		opts.Tracer = provider.Tracer()
		var span trace.Span
		ctx, span = tracing.StartSpan(ctx, provider.Tracer(), "sweep", tracing.AttrRunID.String(runID))
		defer span.End()
	}
	opts.Executor = executor

	logger.Info("starting sweep",
		"series", len(targets),
		"steps", cfg.Steps,
		"repeats", cfg.Repeats,
		"compare", cfg.Compare,
		"build_dir", cfg.BuildDir,
	)
	res, err := runner.New(opts).Run(ctx, targets)
	if err != nil {
		if out := trial.CapturedOutput(err); out != "" {
			fmt.Fprint(stderr, out)
		}
		return err
	}

	rows := res.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No results collected; no table or plot written.")
		return nil
	}

	if err := output.WriteTableFile(cfg.Output, rows); err != nil {
		return err
	}
	logger.Info("wrote results table", "path", cfg.Output, "rows", len(rows))

	title := output.PlotTitle(cfg.Width, cfg.Height, cfg.Compare, cfg.Threads)
	if cfg.Plot == "" {
		logger.Info("plot disabled; skipping")
	} else if err := output.SavePlot(cfg.Plot, res.Series, title); err != nil {
		logger.Warn("plot not written", "path", cfg.Plot, "error", err)
	} else {
		logger.Info("wrote plot", "path", cfg.Plot)
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(res.Series)
	summary := output.NewSummary(output.SummaryInput{
		RunID:      runID,
		Comparison: cfg.Compare,
		Workload:   opts.Workload,
		Steps:      cfg.Steps,
		Repeats:    cfg.Repeats,
		Threads:    cfg.Threads,
		Rule:       cfg.Rule,
		Baseline:   baseline,
		Thresholds: results,
	}, res)

	if cfg.HTMLOutput != "" {
		if err := output.WriteHTMLFile(cfg.HTMLOutput, summary, title); err != nil {
			return err
		}
		logger.Info("wrote HTML report", "path", cfg.HTMLOutput)
	}

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(stdout, summary); err != nil {
			return err
		}
	} else {
		output.PrintReport(stdout, summary)
	}

	if summary.Thresholds != nil && summary.Thresholds.Failed > 0 {
		return fmt.Errorf("%d of %d thresholds failed", summary.Thresholds.Failed, summary.Thresholds.Total)
	}
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// acquireLock takes the harness lock without waiting; a second sweep fails
// instead of measuring alongside the first. The parent directory is created
// only for a lock path the user chose.
func acquireLock(path string, createDir bool) (*flock.Flock, error) {
	if createDir {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("lock directory: %w", err)
		}
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another sweep holds %s", path)
	}
	return lock, nil
}
