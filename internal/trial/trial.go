// Package trial runs a benchmarked program once and extracts its elapsed
// time from standard output.
package trial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/torosent/lifebench/internal/extractor"
)

// Executor runs one trial and returns the elapsed milliseconds it reported.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (float64, error)
}

// Options configure a ProcessExecutor.
type Options struct {
	// Extractor locates the timing value; defaults to the time_ms= pattern.
	Extractor extractor.Extractor
	// Timeout bounds a single trial; 0 waits indefinitely.
	Timeout time.Duration
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// ProcessExecutor launches each trial as a subordinate process.
type ProcessExecutor struct {
	extractor extractor.Extractor
	timeout   time.Duration
	env       []string
}

func NewProcessExecutor(opts Options) (*ProcessExecutor, error) {
	ex := opts.Extractor
	if ex == nil {
		var err error
		ex, err = extractor.New("", "")
		if err != nil {
			return nil, err
		}
	}
	return &ProcessExecutor{extractor: ex, timeout: opts.Timeout, env: opts.Env}, nil
}

func (p *ProcessExecutor) Run(ctx context.Context, inv Invocation) (float64, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args()...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = p.env
	// Grandchildren holding the pipes must not block Wait forever.
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return 0, &LaunchError{Program: inv.Program, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) && p.timeout > 0 {
				return 0, &TimeoutError{
					Program: inv.Program,
					Timeout: p.timeout,
					Stdout:  stdout.String(),
					Stderr:  stderr.String(),
				}
			}
			return 0, fmt.Errorf("%s: %w", inv.Program, ctxErr)
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return 0, &ExitError{
			Program: inv.Program,
			Code:    code,
			Stdout:  stdout.String(),
			Stderr:  stderr.String(),
		}
	}

	return p.parse(inv.Program, stdout.Bytes())
}

func (p *ProcessExecutor) parse(program string, out []byte) (float64, error) {
	raw, ok := p.extractor.Extract(out)
	if !ok {
		return 0, &ParseError{Program: program, Rule: p.extractor.Describe(), Stdout: string(out)}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Program: program, Rule: p.extractor.Describe(), Stdout: string(out)}
	}
	return v, nil
}
