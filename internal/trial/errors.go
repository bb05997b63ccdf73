package trial

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// LaunchError reports a program that could not be started.
type LaunchError struct {
	Program string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Program, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports a program that terminated with a failure status.
type ExitError struct {
	Program string
	Code    int
	Stdout  string
	Stderr  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

// Output returns the captured streams for display to the operator.
func (e *ExitError) Output() string {
	return joinStreams(e.Stdout, e.Stderr)
}

// ParseError reports output without the expected timing token.
type ParseError struct {
	Program string
	Rule    string
	Stdout  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected output from %s (no match for %s): %s", e.Program, e.Rule, strings.TrimSpace(e.Stdout))
}

func (e *ParseError) Output() string {
	return joinStreams(e.Stdout, "")
}

// TimeoutError reports a trial killed after exceeding the trial timeout.
type TimeoutError struct {
	Program string
	Timeout time.Duration
	Stdout  string
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %s", e.Program, e.Timeout)
}

func (e *TimeoutError) Output() string {
	return joinStreams(e.Stdout, e.Stderr)
}

// CapturedOutput returns the raw program output carried by a halting trial
// error anywhere in err's chain, or "" if there is none.
func CapturedOutput(err error) string {
	var exitErr *ExitError
	var timeoutErr *TimeoutError
	var parseErr *ParseError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Output()
	case errors.As(err, &timeoutErr):
		return timeoutErr.Output()
	case errors.As(err, &parseErr):
		return parseErr.Output()
	}
	return ""
}

// IsMissingProgram reports whether err is a launch failure caused by the
// program not existing. Other launch failures, such as permission errors, are
// not treated as missing.
func IsMissingProgram(err error) bool {
	var launch *LaunchError
	if !errors.As(err, &launch) {
		return false
	}
	return errors.Is(launch.Err, fs.ErrNotExist) || errors.Is(launch.Err, exec.ErrNotFound)
}

func joinStreams(stdout, stderr string) string {
	var b strings.Builder
	if s := strings.TrimSpace(stdout); s != "" {
		b.WriteString("stdout:\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	if s := strings.TrimSpace(stderr); s != "" {
		b.WriteString("stderr:\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}
