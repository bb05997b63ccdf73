package metrics

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowestTrackableUs  = 1
	highestTrackableUs = 3_600_000_000 // one hour
)

// TrialSet accumulates the measurements for one (configuration, workload).
type TrialSet struct {
	hist  *hdrhistogram.Histogram
	count int
	mean  float64
	m2    float64
	min   float64
	max   float64
}

// Stats summarizes a TrialSet. All values are milliseconds.
type Stats struct {
	Count    int     `json:"count"`
	MeanMs   float64 `json:"mean_ms"`
	StdDevMs float64 `json:"sd_ms"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P90Ms    float64 `json:"p90_ms"`
}

func NewTrialSet() *TrialSet {
	// Track 1µs up to an hour with 3 significant figures.
	return &TrialSet{hist: hdrhistogram.New(lowestTrackableUs, highestTrackableUs, 3)}
}

// Record adds one elapsed time in milliseconds.
func (s *TrialSet) Record(ms float64) {
	s.count++
	if s.count == 1 {
		s.min, s.max = ms, ms
	} else {
		s.min = math.Min(s.min, ms)
		s.max = math.Max(s.max, ms)
	}

	delta := ms - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (ms - s.mean)

	us := int64(math.Round(ms * 1000))
	if us < s.hist.LowestTrackableValue() {
		us = s.hist.LowestTrackableValue()
	}
	if us > s.hist.HighestTrackableValue() {
		us = s.hist.HighestTrackableValue()
	}
	_ = s.hist.RecordValue(us)
}

// Len returns the number of recorded measurements.
func (s *TrialSet) Len() int { return s.count }

// Stats computes the summary. StdDevMs is the population deviation.
func (s *TrialSet) Stats() Stats {
	if s.count == 0 {
		return Stats{}
	}
	stats := Stats{
		Count:  s.count,
		MeanMs: s.mean,
		MinMs:  s.min,
		MaxMs:  s.max,
	}
	if s.count > 1 {
		stats.StdDevMs = math.Sqrt(s.m2 / float64(s.count))
	}
	stats.P50Ms = float64(s.hist.ValueAtQuantile(50)) / 1000
	stats.P90Ms = float64(s.hist.ValueAtQuantile(90)) / 1000
	return stats
}
