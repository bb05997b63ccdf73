package metrics_test

import (
	"math"
	"testing"

	"github.com/torosent/lifebench/internal/metrics"
)

func TestIdenticalMeasurements(t *testing.T) {
	for _, v := range []float64{0, 0.1, 10, 123.456, 98765.4321} {
		for r := 1; r <= 7; r++ {
			set := metrics.NewTrialSet()
			for i := 0; i < r; i++ {
				set.Record(v)
			}
			stats := set.Stats()
			if stats.MeanMs != v {
				t.Errorf("R=%d v=%g: mean = %v, want exactly %v", r, v, stats.MeanMs, v)
			}
			if stats.StdDevMs != 0 {
				t.Errorf("R=%d v=%g: sd = %v, want 0", r, v, stats.StdDevMs)
			}
		}
	}
}

func TestSingleMeasurementHasZeroDeviation(t *testing.T) {
	set := metrics.NewTrialSet()
	set.Record(42.42)
	stats := set.Stats()
	if stats.Count != 1 || stats.StdDevMs != 0 || stats.MeanMs != 42.42 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.MinMs != 42.42 || stats.MaxMs != 42.42 {
		t.Errorf("min/max = %v/%v", stats.MinMs, stats.MaxMs)
	}
}

func TestPopulationStdDev(t *testing.T) {
	set := metrics.NewTrialSet()
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		set.Record(v)
	}
	stats := set.Stats()
	if stats.MeanMs != 5 {
		t.Errorf("mean = %v, want 5", stats.MeanMs)
	}
	if math.Abs(stats.StdDevMs-2) > 1e-12 {
		t.Errorf("sd = %v, want 2 (population)", stats.StdDevMs)
	}
	if stats.MinMs != 2 || stats.MaxMs != 9 {
		t.Errorf("min/max = %v/%v, want 2/9", stats.MinMs, stats.MaxMs)
	}
}

func TestPercentiles(t *testing.T) {
	set := metrics.NewTrialSet()
	for i := 1; i <= 100; i++ {
		set.Record(float64(i))
	}
	stats := set.Stats()
	if stats.P50Ms < 49 || stats.P50Ms > 51 {
		t.Errorf("p50 = %v, want ~50", stats.P50Ms)
	}
	if stats.P90Ms < 89 || stats.P90Ms > 91 {
		t.Errorf("p90 = %v, want ~90", stats.P90Ms)
	}
}

func TestEmptySet(t *testing.T) {
	set := metrics.NewTrialSet()
	if stats := set.Stats(); stats != (metrics.Stats{}) {
		t.Errorf("empty stats = %+v", stats)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d", set.Len())
	}
}
