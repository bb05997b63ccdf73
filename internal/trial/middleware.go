package trial

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/lifebench/internal/tracing"
)

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, inv Invocation) (float64, error)

func (f ExecutorFunc) Run(ctx context.Context, inv Invocation) (float64, error) {
	return f(ctx, inv)
}

type loggingExecutor struct {
	inner  Executor
	logger *slog.Logger
}

// WithLogging logs every failed trial, including captured program output.
// A missing program is logged at debug level since it only skips a series.
func WithLogging(exec Executor, logger *slog.Logger) Executor {
	if logger == nil {
		return exec
	}
	return &loggingExecutor{inner: exec, logger: logger}
}

func (l *loggingExecutor) Run(ctx context.Context, inv Invocation) (float64, error) {
	v, err := l.inner.Run(ctx, inv)
	if err == nil {
		l.logger.DebugContext(ctx, "trial finished", "program", inv.Program, "steps", inv.Workload.Steps, "elapsed_ms", v)
		return v, nil
	}
	if IsMissingProgram(err) {
		l.logger.DebugContext(ctx, "program not found", "program", inv.Program)
		return v, err
	}

	attrs := []any{"program", inv.Program, "steps", inv.Workload.Steps, "args", inv.Args(), "error", err}
	var exitErr *ExitError
	var parseErr *ParseError
	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &exitErr):
		attrs = append(attrs, "exit_code", exitErr.Code, "stdout", exitErr.Stdout, "stderr", exitErr.Stderr)
	case errors.As(err, &parseErr):
		attrs = append(attrs, "stdout", parseErr.Stdout)
	case errors.As(err, &timeoutErr):
		attrs = append(attrs, "stdout", timeoutErr.Stdout, "stderr", timeoutErr.Stderr)
	}
	l.logger.ErrorContext(ctx, "trial failed", attrs...)
	return v, err
}

type tracingExecutor struct {
	inner  Executor
	tracer trace.Tracer
}

// WithTracing wraps each trial in a client span.
func WithTracing(exec Executor, tracer trace.Tracer) Executor {
	if tracer == nil {
		return exec
	}
	return &tracingExecutor{inner: exec, tracer: tracer}
}

func (t *tracingExecutor) Run(ctx context.Context, inv Invocation) (float64, error) {
	ctx, span := tracing.StartTrialSpan(ctx, t.tracer, inv.Program, inv.Workload.Steps)
	v, err := t.inner.Run(ctx, inv)
	if err != nil {
		tracing.EndSpan(span, err)
		return v, err
	}
	tracing.EndSpan(span, nil, tracing.AttrElapsedMs.Float64(v))
	return v, nil
}
