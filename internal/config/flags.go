package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lifebench",
		Short:         "Sweep simulator builds across modes and step counts and compare timings",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	def := Default()

	// Configuration space
	flags.StringSlice("variant", nil, "Simulator variants to benchmark (default: default; all variants with --compare variants)")
	flags.StringSlice("mode", def.Modes, "Concurrency modes to benchmark (seq, pfor, tasks, simd)")
	flags.String("compare", def.Compare, "Comparison mode: 'free', 'parallel' (one variant), or 'variants' (one mode)")
	flags.IntSlice("blockrows", def.BlockRows, "Block-row granularities for the tasks mode")
	flags.Int("threads", 0, "Fixed thread count for modes that accept it (0 keeps the program default)")
	flags.String("rule", "", "Custom rule string forwarded to every run (e.g. B36/S23)")

	// Workload
	flags.Int("width", def.Width, "Grid width")
	flags.Int("height", def.Height, "Grid height")
	flags.Float64("prob", def.Prob, "Initial live-cell probability")
	flags.IntSlice("steps", def.Steps, "Step counts to sweep")
	flags.IntP("repeats", "n", def.Repeats, "Trials per configuration and step count")

	// Execution
	flags.String("build-dir", def.BuildDir, "Directory holding the simulator executables")
	flags.Duration("trial-timeout", 0, "Kill a trial after this long and halt the sweep (0 waits indefinitely)")
	flags.Float64("trial-rate", 0, "Maximum trials started per second (0 means unlimited)")
	flags.String("time-pattern", "", "Regex whose first group is the elapsed milliseconds (default time_ms=<n>)")
	flags.String("time-json-path", "", "Read elapsed milliseconds from JSON stdout at this path instead")
	flags.String("lock-file", "", "Lock file preventing concurrent sweeps (default <tmp>/lifebench.lock)")

	// Output
	flags.StringP("output", "o", def.Output, "CSV results table path")
	flags.String("plot", def.Plot, "Comparison plot image path (.png, .svg, .pdf; empty disables)")
	flags.String("html-output", "", "Generate HTML report to the specified file path")
	flags.Bool("json-output", false, "Emit the summary as JSON")
	flags.String("baseline", "", "Previous results CSV to compare mean timings against")
	flags.StringSlice("threshold", nil, "Assertions on result rows (repeatable, e.g. 'mean_ms < 500')")
	flags.String("log-level", def.LogLevel, "Log level: debug, info, warn, error")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP endpoint for sweep traces")
	flags.String("tracing-protocol", def.Tracing.Protocol, "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", def.Tracing.SampleRate, "Trace sampling ratio between 0 and 1")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	stringSlice := func(name string, dst *[]string) error {
		if !fs.Changed(name) {
			return nil
		}
		val, err := fs.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = trimAll(val)
		return nil
	}
	intSlice := func(name string, dst *[]int) error {
		if !fs.Changed(name) {
			return nil
		}
		val, err := fs.GetIntSlice(name)
		if err != nil {
			return err
		}
		*dst = val
		return nil
	}
	str := func(name string, dst *string) error {
		if !fs.Changed(name) {
			return nil
		}
		val, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(val)
		return nil
	}
	integer := func(name string, dst *int) error {
		if !fs.Changed(name) {
			return nil
		}
		val, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = val
		return nil
	}
	float := func(name string, dst *float64) error {
		if !fs.Changed(name) {
			return nil
		}
		val, err := fs.GetFloat64(name)
		if err != nil {
			return err
		}
		*dst = val
		return nil
	}
	boolean := func(name string, dst *bool) error {
		if !fs.Changed(name) {
			return nil
		}
		val, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		*dst = val
		return nil
	}

	steps := []error{
		stringSlice("variant", &cfg.Variants),
		stringSlice("mode", &cfg.Modes),
		str("compare", &cfg.Compare),
		intSlice("blockrows", &cfg.BlockRows),
		integer("threads", &cfg.Threads),
		str("rule", &cfg.Rule),
		integer("width", &cfg.Width),
		integer("height", &cfg.Height),
		float("prob", &cfg.Prob),
		intSlice("steps", &cfg.Steps),
		integer("repeats", &cfg.Repeats),
		str("build-dir", &cfg.BuildDir),
		float("trial-rate", &cfg.TrialRate),
		str("time-pattern", &cfg.TimePattern),
		str("time-json-path", &cfg.TimeJSONPath),
		str("lock-file", &cfg.LockFile),
		str("output", &cfg.Output),
		str("plot", &cfg.Plot),
		str("html-output", &cfg.HTMLOutput),
		boolean("json-output", &cfg.JSONOutput),
		str("baseline", &cfg.Baseline),
		stringSlice("threshold", &cfg.Thresholds),
		str("log-level", &cfg.LogLevel),
		str("tracing-endpoint", &cfg.Tracing.Endpoint),
		str("tracing-protocol", &cfg.Tracing.Protocol),
		boolean("tracing-insecure", &cfg.Tracing.Insecure),
		float("tracing-sample-rate", &cfg.Tracing.SampleRate),
	}
	for _, err := range steps {
		if err != nil {
			return err
		}
	}

	if fs.Changed("trial-timeout") {
		val, err := fs.GetDuration("trial-timeout")
		if err != nil {
			return err
		}
		cfg.TrialTimeout = val
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
