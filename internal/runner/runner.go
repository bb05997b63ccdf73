package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/torosent/lifebench/internal/metrics"
	"github.com/torosent/lifebench/internal/sweep"
	"github.com/torosent/lifebench/internal/tracing"
	"github.com/torosent/lifebench/internal/trial"
)

// ErrSkipped is returned by Collect when the target's program is missing.
var ErrSkipped = errors.New("program not found")

// TrialFailure wraps a halting trial error with where it happened.
type TrialFailure struct {
	Label string
	Steps int
	Trial int
	Err   error
}

func (e *TrialFailure) Error() string {
	return fmt.Sprintf("%s: steps=%d trial %d: %v", e.Label, e.Steps, e.Trial, e.Err)
}

func (e *TrialFailure) Unwrap() error { return e.Err }

// Runner executes targets sequentially.
type Runner struct {
	opt     Options
	limiter *rate.Limiter
	trials  int
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt, limiter: opt.LimiterFactory(opt.RatePerSecond)}
}

// Run collects every target in order. It stops at the first halting failure
// and returns the series collected so far alongside the error.
func (r *Runner) Run(ctx context.Context, targets []sweep.Target) (Result, error) {
	start := time.Now()
	r.trials = 0
	var res Result

	for _, target := range targets {
		series, err := r.Collect(ctx, target)
		if errors.Is(err, ErrSkipped) {
			program := r.opt.Resolver.Path(target.Config.Variant, target.Config.Strategy.Mode())
			r.opt.Logger.WarnContext(ctx, "skipping series, program not found", "series", target.Label, "program", program)
			res.Skipped = append(res.Skipped, Skip{Label: target.Label, Program: program})
			continue
		}
		if err != nil {
			res.Trials = r.trials
			res.Duration = time.Since(start)
			return res, err
		}
		res.Series = append(res.Series, series)
	}

	res.Trials = r.trials
	res.Duration = time.Since(start)
	return res, nil
}

// Collect builds the series for one target. It returns ErrSkipped if the
// program does not exist and a *TrialFailure for any other trial error.
func (r *Runner) Collect(ctx context.Context, target sweep.Target) (series Series, err error) {
	cfg := target.Config
	mode := cfg.Strategy.Mode()
	program := r.opt.Resolver.Path(cfg.Variant, mode)

	if r.opt.Tracer != nil {
		var span trace.Span
		ctx, span = tracing.StartSpan(ctx, r.opt.Tracer, "series "+target.Label,
			tracing.AttrLabel.String(target.Label),
			tracing.AttrProgram.String(program),
		)
		defer func() {
			skipped := errors.Is(err, ErrSkipped)
			if skipped {
				tracing.EndSpan(span, nil, tracing.AttrSkipped.Bool(true))
				return
			}
			tracing.EndSpan(span, err, tracing.AttrSkipped.Bool(false))
		}()
	}

	series = Series{
		Label:   target.Label,
		Config:  cfg,
		Program: r.opt.Resolver.Name(cfg.Variant, mode),
		Points:  make([]Point, 0, len(r.opt.Steps)),
	}

	for _, steps := range r.opt.Steps {
		inv := trial.Invocation{
			Program:  program,
			Workload: r.opt.Workload.WithSteps(steps),
			Config:   cfg,
			Rule:     r.opt.Rule,
		}
		set := metrics.NewTrialSet()
		for i := 1; i <= r.opt.Repeats; i++ {
			if err := r.limiter.Wait(ctx); err != nil {
				return Series{}, &TrialFailure{Label: target.Label, Steps: steps, Trial: i, Err: err}
			}
			ms, err := r.opt.Executor.Run(ctx, inv)
			if trial.IsMissingProgram(err) {
				return Series{}, ErrSkipped
			}
			if err != nil {
				return Series{}, &TrialFailure{Label: target.Label, Steps: steps, Trial: i, Err: err}
			}
			r.trials++
			set.Record(ms)
		}

		stats := set.Stats()
		series.Points = append(series.Points, Point{Steps: steps, Stats: stats})
		fmt.Fprintf(r.opt.Progress, "%s: steps=%d mean_ms=%.2f sd=%.2f\n", target.Label, steps, stats.MeanMs, stats.StdDevMs)
	}
	return series, nil
}
