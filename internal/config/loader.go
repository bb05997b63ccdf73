package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file into a
// Config. Explicitly set flags win over file values, which win over defaults.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(extra, " "))
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Compare = strings.ToLower(strings.TrimSpace(cfg.Compare))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(cfg.Tracing.Protocol))

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	stringSlices := []struct {
		dst  *[]string
		keys []string
	}{
		{&cfg.Variants, []string{"variants", "variant"}},
		{&cfg.Modes, []string{"modes", "mode"}},
		{&cfg.Thresholds, []string{"thresholds", "threshold"}},
	}
	for _, s := range stringSlices {
		if raw, ok := lookupSetting(settings, s.keys...); ok {
			val, err := asStringSlice(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", s.keys[0], err)
			}
			*s.dst = trimAll(val)
		}
	}

	intSlices := []struct {
		dst  *[]int
		keys []string
	}{
		{&cfg.BlockRows, []string{"blockrows", "block_rows", "blockRows"}},
		{&cfg.Steps, []string{"steps", "steps_list", "stepsList"}},
	}
	for _, s := range intSlices {
		if raw, ok := lookupSetting(settings, s.keys...); ok {
			val, err := asIntSlice(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", s.keys[0], err)
			}
			*s.dst = val
		}
	}

	strs := []struct {
		dst  *string
		keys []string
	}{
		{&cfg.Compare, []string{"compare", "comparison"}},
		{&cfg.Rule, []string{"rule"}},
		{&cfg.BuildDir, []string{"build_dir", "buildDir", "build-dir"}},
		{&cfg.Output, []string{"output", "csv"}},
		{&cfg.Plot, []string{"plot"}},
		{&cfg.HTMLOutput, []string{"html_output", "htmlOutput", "html-output"}},
		{&cfg.TimePattern, []string{"time_pattern", "timePattern", "time-pattern"}},
		{&cfg.TimeJSONPath, []string{"time_json_path", "timeJSONPath", "time-json-path"}},
		{&cfg.Baseline, []string{"baseline"}},
		{&cfg.LockFile, []string{"lock_file", "lockFile", "lock-file"}},
		{&cfg.LogLevel, []string{"log_level", "logLevel", "log-level"}},
	}
	for _, s := range strs {
		if raw, ok := lookupSetting(settings, s.keys...); ok {
			val, err := asString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", s.keys[0], err)
			}
			*s.dst = strings.TrimSpace(val)
		}
	}

	ints := []struct {
		dst  *int
		keys []string
	}{
		{&cfg.Width, []string{"width"}},
		{&cfg.Height, []string{"height"}},
		{&cfg.Repeats, []string{"repeats"}},
		{&cfg.Threads, []string{"threads"}},
	}
	for _, s := range ints {
		if raw, ok := lookupSetting(settings, s.keys...); ok {
			val, err := asInt(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", s.keys[0], err)
			}
			*s.dst = val
		}
	}

	if raw, ok := lookupSetting(settings, "prob", "probability"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("prob: %w", err)
		}
		cfg.Prob = val
	}

	if raw, ok := lookupSetting(settings, "trial_rate", "trialRate", "trial-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("trial_rate: %w", err)
		}
		cfg.TrialRate = val
	}

	if raw, ok := lookupSetting(settings, "trial_timeout", "trialTimeout", "trial-timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("trial_timeout: %w", err)
		}
		cfg.TrialTimeout = val
	}

	if raw, ok := lookupSetting(settings, "json_output", "jsonOutput", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("json_output: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracingConfig(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracingConfig(raw interface{}, base TracingConfig) (TracingConfig, error) {
	settings, err := toStringKeyMap(raw)
	if err != nil {
		return base, err
	}
	out := base
	if v, ok := lookupSetting(settings, "endpoint"); ok {
		s, err := asString(v)
		if err != nil {
			return base, fmt.Errorf("endpoint: %w", err)
		}
		out.Endpoint = strings.TrimSpace(s)
	}
	if v, ok := lookupSetting(settings, "protocol"); ok {
		s, err := asString(v)
		if err != nil {
			return base, fmt.Errorf("protocol: %w", err)
		}
		out.Protocol = strings.TrimSpace(s)
	}
	if v, ok := lookupSetting(settings, "service_name", "serviceName"); ok {
		s, err := asString(v)
		if err != nil {
			return base, fmt.Errorf("service_name: %w", err)
		}
		out.ServiceName = strings.TrimSpace(s)
	}
	if v, ok := lookupSetting(settings, "insecure"); ok {
		b, err := asBool(v)
		if err != nil {
			return base, fmt.Errorf("insecure: %w", err)
		}
		out.Insecure = b
	}
	if v, ok := lookupSetting(settings, "sample_rate", "sampleRate"); ok {
		f, err := asFloat64(v)
		if err != nil {
			return base, fmt.Errorf("sample_rate: %w", err)
		}
		out.SampleRate = f
	}
	return out, nil
}
