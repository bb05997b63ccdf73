package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the single run configuration threaded through every component.
type Config struct {
	Variants     []string      `mapstructure:"variants"`
	Modes        []string      `mapstructure:"modes"`
	Compare      string        `mapstructure:"compare"`
	BlockRows    []int         `mapstructure:"blockrows"`
	Width        int           `mapstructure:"width"`
	Height       int           `mapstructure:"height"`
	Prob         float64       `mapstructure:"prob"`
	Repeats      int           `mapstructure:"repeats"`
	Steps        []int         `mapstructure:"steps"`
	Threads      int           `mapstructure:"threads"`
	Rule         string        `mapstructure:"rule"`
	BuildDir     string        `mapstructure:"build_dir"`
	Output       string        `mapstructure:"output"`
	Plot         string        `mapstructure:"plot"`
	HTMLOutput   string        `mapstructure:"html_output"`
	JSONOutput   bool          `mapstructure:"json_output"`
	TrialTimeout time.Duration `mapstructure:"trial_timeout"`
	TrialRate    float64       `mapstructure:"trial_rate"`
	TimePattern  string        `mapstructure:"time_pattern"`
	TimeJSONPath string        `mapstructure:"time_json_path"`
	Thresholds   []string      `mapstructure:"thresholds"`
	Baseline     string        `mapstructure:"baseline"`
	LockFile     string        `mapstructure:"lock_file"`
	LogLevel     string        `mapstructure:"log_level"`
	ConfigFile   string        `mapstructure:"-"`
	Tracing      TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls OpenTelemetry export of sweep spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether an OTLP endpoint is configured, directly or through
// OTEL_EXPORTER_OTLP_ENDPOINT.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// Default returns the configuration used when nothing is overridden. Variants
// stays nil so "not chosen" can be told apart from an explicit choice.
func Default() *Config {
	return &Config{
		Modes:     []string{"seq", "pfor", "tasks"},
		Compare:   "free",
		BlockRows: []int{2, 4, 8, 16, 32, 64},
		Width:     160,
		Height:    96,
		Prob:      0.25,
		Repeats:   3,
		Steps:     []int{500, 1000, 2000, 4000},
		BuildDir:  "build",
		Output:    "results.csv",
		Plot:      "steps_vs_time.png",
		LogLevel:  "info",
		Tracing:   TracingConfig{Protocol: "grpc", SampleRate: 1},
	}
}

// EffectiveLockFile returns LockFile, defaulting to a machine-wide file in the
// temp directory so every sweep on the host contends for the same lock.
func (c Config) EffectiveLockFile() string {
	if strings.TrimSpace(c.LockFile) != "" {
		return c.LockFile
	}
	return filepath.Join(os.TempDir(), "lifebench.lock")
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks value ranges. Vocabulary keys and comparison constraints
// are checked when the sweep is planned.
func (c Config) Validate() error {
	var issues []string

	if c.Width <= 0 {
		issues = append(issues, "width must be > 0")
	}
	if c.Height <= 0 {
		issues = append(issues, "height must be > 0")
	}
	if c.Prob < 0 || c.Prob > 1 {
		issues = append(issues, "prob must be within [0,1]")
	}
	if c.Repeats < 1 {
		issues = append(issues, "repeats must be >= 1")
	}
	if len(c.Steps) == 0 {
		issues = append(issues, "steps must list at least one step count")
	}
	for idx, s := range c.Steps {
		if s <= 0 {
			issues = append(issues, fmt.Sprintf("steps[%d]: must be > 0", idx))
		}
	}
	if len(c.Modes) == 0 {
		issues = append(issues, "at least one mode is required")
	}
	for idx, rows := range c.BlockRows {
		if rows <= 0 {
			issues = append(issues, fmt.Sprintf("blockrows[%d]: must be > 0", idx))
		}
	}
	if c.Threads < 0 {
		issues = append(issues, "threads must be >= 0")
	}
	if c.TrialTimeout < 0 {
		issues = append(issues, "trial timeout must be >= 0")
	}
	if c.TrialRate < 0 {
		issues = append(issues, "trial rate must be >= 0")
	}
	if strings.TrimSpace(c.Output) == "" {
		issues = append(issues, "output path is required")
	}
	if c.TimePattern != "" && c.TimeJSONPath != "" {
		issues = append(issues, "time pattern and time json path are mutually exclusive")
	}

	switch strings.ToLower(strings.TrimSpace(c.Compare)) {
	case "", "free", "parallel", "variants":
	default:
		issues = append(issues, fmt.Sprintf("compare: must be 'free', 'parallel', or 'variants', got %q", c.Compare))
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log level %q is not supported", c.LogLevel))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, "tracing: sample_rate must be within [0,1]")
	}
	return issues
}
