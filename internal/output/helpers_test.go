package output_test

import (
	"testing"
	"time"

	"github.com/torosent/lifebench/internal/metrics"
	"github.com/torosent/lifebench/internal/runner"
	"github.com/torosent/lifebench/internal/space"
)

func newSeries(t *testing.T, label string, v space.Variant, m space.Mode, blockRows int, means ...float64) runner.Series {
	t.Helper()
	strategy, err := space.NewStrategy(m, blockRows)
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	s := runner.Series{
		Label:   label,
		Config:  space.Configuration{Variant: v, Strategy: strategy},
		Program: space.Resolver{}.Name(v, m),
	}
	for i, mean := range means {
		s.Points = append(s.Points, runner.Point{
			Steps: 500 * (i + 1),
			Stats: metrics.Stats{Count: 2, MeanMs: mean, StdDevMs: 0.5, MinMs: mean - 0.5, MaxMs: mean + 0.5},
		})
	}
	return s
}

func sampleResult(t *testing.T) runner.Result {
	t.Helper()
	return runner.Result{
		Series: []runner.Series{
			newSeries(t, "default / sequential", space.VariantDefault, space.ModeSequential, 0, 10, 20),
			newSeries(t, "default / parallel-tasks (blockrows=8)", space.VariantDefault, space.ModeParallelTasks, 8, 4, 7.25),
		},
		Skipped:  []runner.Skip{{Label: "default / parallel-for", Program: "build/default_openMP_parallel_for"}},
		Trials:   9,
		Duration: 1500 * time.Millisecond,
	}
}
