package trial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/torosent/lifebench/internal/extractor"
	"github.com/torosent/lifebench/internal/space"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func mustStrategy(t *testing.T, m space.Mode, rows int) space.Strategy {
	t.Helper()
	s, err := space.NewStrategy(m, rows)
	if err != nil {
		t.Fatalf("NewStrategy() error = %v", err)
	}
	return s
}

func baseInvocation(t *testing.T, program string) Invocation {
	return Invocation{
		Program:  program,
		Workload: space.Workload{Width: 160, Height: 96, Prob: 0.25, Steps: 500},
		Config:   space.Configuration{Variant: space.VariantDefault, Strategy: mustStrategy(t, space.ModeSequential, 0)},
	}
}

func TestInvocationArgs(t *testing.T) {
	tests := []struct {
		name    string
		mode    space.Mode
		rows    int
		threads int
		rule    string
		want    string
	}{
		{"sequential ignores threads", space.ModeSequential, 0, 8, "", "--no-draw --steps 500 --prob 0.25 --width 160 --height 96"},
		{"parallel for with threads", space.ModeParallelFor, 0, 8, "", "--no-draw --steps 500 --prob 0.25 --width 160 --height 96 --threads 8"},
		{"tasks with blockrows", space.ModeParallelTasks, 16, 0, "", "--no-draw --steps 500 --prob 0.25 --width 160 --height 96 --blockrows 16"},
		{"tasks with everything", space.ModeParallelTasks, 4, 2, "B36/S23", "--no-draw --steps 500 --prob 0.25 --width 160 --height 96 --threads 2 --blockrows 4 --rule B36/S23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invocation{
				Program:  "prog",
				Workload: space.Workload{Width: 160, Height: 96, Prob: 0.25, Steps: 500},
				Config: space.Configuration{
					Variant:  space.VariantDefault,
					Strategy: mustStrategy(t, tt.mode, tt.rows),
					Threads:  tt.threads,
				},
				Rule: tt.rule,
			}
			if got := strings.Join(inv.Args(), " "); got != tt.want {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunParsesTiming(t *testing.T) {
	prog := writeScript(t, t.TempDir(), "default_sequential", `echo "steps=500 time_ms=123.456 cells=42"`)
	exec, err := NewProcessExecutor(Options{})
	if err != nil {
		t.Fatalf("NewProcessExecutor() error = %v", err)
	}

	got, err := exec.Run(context.Background(), baseInvocation(t, prog))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != 123.456 {
		t.Errorf("Run() = %v, want 123.456", got)
	}
}

func TestRunPassesArguments(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	prog := writeScript(t, dir, "default_openMP_parallel_tasks", `printf '%s\n' "$*" > "$ARGS_FILE"; echo time_ms=1`)
	exec, err := NewProcessExecutor(Options{Env: append(os.Environ(), "ARGS_FILE="+argsFile)})
	if err != nil {
		t.Fatalf("NewProcessExecutor() error = %v", err)
	}

	inv := baseInvocation(t, prog)
	inv.Config.Strategy = mustStrategy(t, space.ModeParallelTasks, 8)
	inv.Config.Threads = 4
	if _, err := exec.Run(context.Background(), inv); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "--no-draw --steps 500 --prob 0.25 --width 160 --height 96 --threads 4 --blockrows 8"
	if got := strings.TrimSpace(string(data)); got != want {
		t.Errorf("program saw %q, want %q", got, want)
	}
}

func TestRunMissingProgram(t *testing.T) {
	exec, _ := NewProcessExecutor(Options{})
	_, err := exec.Run(context.Background(), baseInvocation(t, filepath.Join(t.TempDir(), "absent")))

	var launch *LaunchError
	if !errors.As(err, &launch) {
		t.Fatalf("Run() error = %v, want LaunchError", err)
	}
	if !IsMissingProgram(err) {
		t.Errorf("IsMissingProgram() = false for %v", err)
	}
}

func TestRunNotExecutableIsNotMissing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are POSIX specific")
	}
	path := filepath.Join(t.TempDir(), "default_sequential")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho time_ms=1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	exec, _ := NewProcessExecutor(Options{})
	_, err := exec.Run(context.Background(), baseInvocation(t, path))

	var launch *LaunchError
	if !errors.As(err, &launch) {
		t.Fatalf("Run() error = %v, want LaunchError", err)
	}
	if IsMissingProgram(err) {
		t.Errorf("IsMissingProgram() = true for permission failure %v", err)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	prog := writeScript(t, t.TempDir(), "broken", `echo "partial output"; echo "boom" >&2; exit 1`)
	exec, _ := NewProcessExecutor(Options{})
	_, err := exec.Run(context.Background(), baseInvocation(t, prog))

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(exitErr.Stdout, "partial output") || !strings.Contains(exitErr.Stderr, "boom") {
		t.Errorf("captured stdout=%q stderr=%q", exitErr.Stdout, exitErr.Stderr)
	}
	if !strings.Contains(exitErr.Output(), "stderr:\nboom") {
		t.Errorf("Output() = %q", exitErr.Output())
	}
	if IsMissingProgram(err) {
		t.Error("exit failure must not count as missing program")
	}
}

func TestCapturedOutput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "exit error keeps lines verbatim",
			err:  &ExitError{Program: "p", Code: 1, Stdout: "out one\nout two\n", Stderr: "err one\nerr two\n"},
			want: "stdout:\nout one\nout two\nstderr:\nerr one\nerr two\n",
		},
		{
			name: "wrapped timeout",
			err:  fmt.Errorf("series: %w", &TimeoutError{Program: "p", Stderr: "stuck"}),
			want: "stderr:\nstuck\n",
		},
		{
			name: "parse error",
			err:  &ParseError{Program: "p", Stdout: "done"},
			want: "stdout:\ndone\n",
		},
		{name: "launch error", err: &LaunchError{Program: "p", Err: os.ErrPermission}, want: ""},
		{name: "nil", err: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapturedOutput(tt.err); got != tt.want {
				t.Errorf("CapturedOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunUnparsableOutput(t *testing.T) {
	prog := writeScript(t, t.TempDir(), "quiet", `echo "done in 12ms"`)
	exec, _ := NewProcessExecutor(Options{})
	_, err := exec.Run(context.Background(), baseInvocation(t, prog))

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Run() error = %v, want ParseError", err)
	}
	if !strings.Contains(parseErr.Stdout, "done in 12ms") {
		t.Errorf("Stdout = %q", parseErr.Stdout)
	}
}

func TestRunJSONExtractor(t *testing.T) {
	prog := writeScript(t, t.TempDir(), "json", `echo '{"time_ms": 42.5, "steps": 500}'`)
	exec, _ := NewProcessExecutor(Options{Extractor: extractor.NewJSONPath("$.time_ms")})

	got, err := exec.Run(context.Background(), baseInvocation(t, prog))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != 42.5 {
		t.Errorf("Run() = %v, want 42.5", got)
	}
}

func TestRunTimeout(t *testing.T) {
	prog := writeScript(t, t.TempDir(), "hang", `exec sleep 5`)
	exec, _ := NewProcessExecutor(Options{Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := exec.Run(context.Background(), baseInvocation(t, prog))
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Run() error = %v, want TimeoutError", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
}

func TestWithLoggingIncludesOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	failing := ExecutorFunc(func(ctx context.Context, inv Invocation) (float64, error) {
		return 0, &ExitError{Program: inv.Program, Code: 2, Stdout: "out-text", Stderr: "err-text"}
	})
	_, err := WithLogging(failing, logger).Run(context.Background(), baseInvocation(t, "prog"))
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	out := buf.String()
	for _, want := range []string{"trial failed", "exit_code=2", "out-text", "err-text"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestWithLoggingNilLogger(t *testing.T) {
	inner := ExecutorFunc(func(ctx context.Context, inv Invocation) (float64, error) { return 1, nil })
	if got := WithLogging(inner, nil); got == nil {
		t.Fatal("WithLogging(nil) returned nil")
	}
}
