package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/lifebench/internal/config"
)

func TestParseFlagsDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Variants != nil {
		t.Errorf("Variants = %v, want nil (unset)", cfg.Variants)
	}
	if strings.Join(cfg.Modes, ",") != "seq,pfor,tasks" {
		t.Errorf("Modes = %v, want [seq pfor tasks]", cfg.Modes)
	}
	if cfg.Compare != "free" {
		t.Errorf("Compare = %q, want free", cfg.Compare)
	}
	if cfg.Width != 160 || cfg.Height != 96 {
		t.Errorf("dimensions = %dx%d, want 160x96", cfg.Width, cfg.Height)
	}
	if cfg.Prob != 0.25 {
		t.Errorf("Prob = %g, want 0.25", cfg.Prob)
	}
	if cfg.Repeats != 3 {
		t.Errorf("Repeats = %d, want 3", cfg.Repeats)
	}
	if len(cfg.Steps) != 4 || cfg.Steps[0] != 500 || cfg.Steps[3] != 4000 {
		t.Errorf("Steps = %v, want [500 1000 2000 4000]", cfg.Steps)
	}
	if cfg.TrialTimeout != 0 {
		t.Errorf("TrialTimeout = %s, want 0", cfg.TrialTimeout)
	}
	if cfg.Output != "results.csv" || cfg.Plot != "steps_vs_time.png" {
		t.Errorf("outputs = %q, %q", cfg.Output, cfg.Plot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"variants": ["default", "inverse"],
		"modes": "seq,simd",
		"compare": "free",
		"width": 320,
		"height": 200,
		"prob": 0.4,
		"repeats": 5,
		"steps": [100, 200],
		"buildDir": "out/bin",
		"trialTimeout": "90s",
		"jsonOutput": true,
		"tracing": {"endpoint": "localhost:4317", "insecure": true}
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--repeats", "2", "--steps", "50,60,70"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if strings.Join(cfg.Variants, ",") != "default,inverse" {
		t.Errorf("Variants = %v", cfg.Variants)
	}
	if strings.Join(cfg.Modes, ",") != "seq,simd" {
		t.Errorf("Modes = %v", cfg.Modes)
	}
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Errorf("dimensions = %dx%d, want 320x200", cfg.Width, cfg.Height)
	}
	if cfg.Prob != 0.4 {
		t.Errorf("Prob = %g, want 0.4", cfg.Prob)
	}
	if cfg.Repeats != 2 {
		t.Errorf("Repeats = %d, want flag override 2", cfg.Repeats)
	}
	if len(cfg.Steps) != 3 || cfg.Steps[2] != 70 {
		t.Errorf("Steps = %v, want flag override [50 60 70]", cfg.Steps)
	}
	if cfg.BuildDir != "out/bin" {
		t.Errorf("BuildDir = %q, want out/bin", cfg.BuildDir)
	}
	if cfg.TrialTimeout != 90*time.Second {
		t.Errorf("TrialTimeout = %s, want 90s", cfg.TrialTimeout)
	}
	if !cfg.JSONOutput {
		t.Errorf("JSONOutput = false, want true")
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || !cfg.Tracing.Insecure {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content, err := yaml.Marshal(map[string]interface{}{
		"variants":  []string{"antilife"},
		"modes":     []string{"tasks"},
		"compare":   "Parallel",
		"blockrows": []int{16, 32},
		"threads":   8,
		"rule":      "B36/S23",
		"plot":      "",
	})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Compare != "parallel" {
		t.Errorf("Compare = %q, want parallel", cfg.Compare)
	}
	if len(cfg.BlockRows) != 2 || cfg.BlockRows[0] != 16 {
		t.Errorf("BlockRows = %v, want [16 32]", cfg.BlockRows)
	}
	if cfg.Threads != 8 {
		t.Errorf("Threads = %d, want 8", cfg.Threads)
	}
	if cfg.Rule != "B36/S23" {
		t.Errorf("Rule = %q", cfg.Rule)
	}
	if cfg.Plot != "" {
		t.Errorf("Plot = %q, want disabled", cfg.Plot)
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if err != config.ErrHelpRequested {
		t.Fatalf("Load() error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadRejectsPositionalArgs(t *testing.T) {
	if _, err := config.NewLoader().Load([]string{"extra"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
}

func TestEffectiveLockFile(t *testing.T) {
	cfg := config.Default()
	if got, want := cfg.EffectiveLockFile(), filepath.Join(os.TempDir(), "lifebench.lock"); got != want {
		t.Errorf("EffectiveLockFile() = %q, want %q", got, want)
	}
	cfg.LockFile = "/tmp/custom.lock"
	if got := cfg.EffectiveLockFile(); got != "/tmp/custom.lock" {
		t.Errorf("EffectiveLockFile() = %q", got)
	}
}

func TestConfigValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{
			name: "bad workload",
			mutate: func(c *config.Config) {
				c.Width = 0
				c.Height = -1
				c.Prob = 1.5
			},
			want: []string{"width", "height", "prob"},
		},
		{
			name: "bad sweep",
			mutate: func(c *config.Config) {
				c.Repeats = 0
				c.Steps = []int{100, 0}
				c.BlockRows = []int{-2}
				c.Modes = nil
			},
			want: []string{"repeats", "steps[1]", "blockrows[0]", "mode"},
		},
		{
			name: "negative execution limits",
			mutate: func(c *config.Config) {
				c.Threads = -1
				c.TrialTimeout = -time.Second
				c.TrialRate = -1
			},
			want: []string{"threads", "timeout", "rate"},
		},
		{
			name: "unknown compare",
			mutate: func(c *config.Config) {
				c.Compare = "matrix"
			},
			want: []string{"compare"},
		},
		{
			name: "extractor conflict",
			mutate: func(c *config.Config) {
				c.TimePattern = `t=(\d+)`
				c.TimeJSONPath = "t"
			},
			want: []string{"mutually exclusive"},
		},
		{
			name: "tracing",
			mutate: func(c *config.Config) {
				c.Tracing.Protocol = "udp"
				c.Tracing.SampleRate = 2
			},
			want: []string{"tracing: protocol", "sample_rate"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() error = nil, want error")
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() error %q missing %q", err.Error(), want)
				}
			}
		})
	}
}
