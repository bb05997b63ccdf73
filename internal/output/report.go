package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/torosent/lifebench/internal/metrics"
	"github.com/torosent/lifebench/internal/runner"
	"github.com/torosent/lifebench/internal/space"
	"github.com/torosent/lifebench/internal/threshold"
)

// Summary is the machine-readable account of one sweep.
type Summary struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Comparison  string            `json:"comparison"`
	Workload    WorkloadSummary   `json:"workload"`
	Series      []SeriesSummary   `json:"series"`
	Skipped     []runner.Skip     `json:"skipped,omitempty"`
	Trials      int               `json:"trials"`
	DurationMs  float64           `json:"duration_ms"`
	Baseline    []Delta           `json:"-"`
	Thresholds  *ThresholdSummary `json:"thresholds,omitempty"`
}

// WorkloadSummary records the fixed sweep parameters.
type WorkloadSummary struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Prob    float64 `json:"prob"`
	Steps   []int   `json:"steps"`
	Repeats int     `json:"repeats"`
	Threads int     `json:"threads,omitempty"`
	Rule    string  `json:"rule,omitempty"`
}

// SeriesSummary is one series with full per-point statistics.
type SeriesSummary struct {
	Label     string         `json:"label"`
	Variant   string         `json:"variant"`
	Mode      string         `json:"mode"`
	BlockRows int            `json:"blockrows,omitempty"`
	Exe       string         `json:"exe"`
	Points    []PointSummary `json:"points"`
}

// PointSummary carries the statistics for one step count and, when a
// baseline was supplied, the relative change against it.
type PointSummary struct {
	Steps int `json:"steps"`
	metrics.Stats
	BaselineMeanMs *float64 `json:"baseline_mean_ms,omitempty"`
	ChangePct      *float64 `json:"change_pct,omitempty"`
}

// ThresholdSummary aggregates threshold outcomes.
type ThresholdSummary struct {
	Total   int                   `json:"total"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Results []ThresholdResultJSON `json:"results"`
}

// ThresholdResultJSON is the serialized form of a threshold.Result.
type ThresholdResultJSON struct {
	Threshold string  `json:"threshold"`
	Label     string  `json:"label,omitempty"`
	Metric    string  `json:"metric"`
	Operator  string  `json:"operator"`
	Expected  float64 `json:"expected"`
	Actual    float64 `json:"actual"`
	Series    string  `json:"series,omitempty"`
	Steps     int     `json:"steps,omitempty"`
	Pass      bool    `json:"pass"`
}

// SummaryInput gathers what NewSummary needs beyond the sweep result.
type SummaryInput struct {
	RunID      string
	Comparison string
	Workload   space.Workload
	Steps      []int
	Repeats    int
	Threads    int
	Rule       string
	Baseline   []runner.Row
	Thresholds []threshold.Result
}

// NewSummary assembles a Summary from a completed sweep.
func NewSummary(in SummaryInput, res runner.Result) Summary {
	s := Summary{
		RunID:       in.RunID,
		GeneratedAt: time.Now().UTC(),
		Comparison:  in.Comparison,
		Workload: WorkloadSummary{
			Width:   in.Workload.Width,
			Height:  in.Workload.Height,
			Prob:    in.Workload.Prob,
			Steps:   in.Steps,
			Repeats: in.Repeats,
			Threads: in.Threads,
			Rule:    in.Rule,
		},
		Skipped:    res.Skipped,
		Trials:     res.Trials,
		DurationMs: float64(res.Duration) / float64(time.Millisecond),
		Thresholds: summarizeThresholds(in.Thresholds),
	}

	if len(in.Baseline) > 0 {
		s.Baseline = CompareBaseline(res.Rows(), in.Baseline)
	}
	deltas := make(map[rowKey]Delta, len(s.Baseline))
	for _, d := range s.Baseline {
		deltas[keyOf(d.Row)] = d
	}

	for _, series := range res.Series {
		ss := SeriesSummary{
			Label:   series.Label,
			Variant: series.Config.Variant.DisplayName(),
			Mode:    series.Config.Strategy.Mode().DisplayName(),
			Exe:     series.Program,
		}
		if rows, ok := series.Config.Strategy.BlockRows(); ok {
			ss.BlockRows = rows
		}
		rows := series.Rows()
		for i, p := range series.Points {
			ps := PointSummary{Steps: p.Steps, Stats: p.Stats}
			if d, ok := deltas[keyOf(rows[i])]; ok {
				baseline, change := d.BaselineMeanMs, d.ChangePct
				ps.BaselineMeanMs = &baseline
				ps.ChangePct = &change
			}
			ss.Points = append(ss.Points, ps)
		}
		s.Series = append(s.Series, ss)
	}
	return s
}

func summarizeThresholds(results []threshold.Result) *ThresholdSummary {
	if len(results) == 0 {
		return nil
	}
	ts := &ThresholdSummary{
		Total:   len(results),
		Results: make([]ThresholdResultJSON, len(results)),
	}
	for i, tr := range results {
		ts.Results[i] = ThresholdResultJSON{
			Threshold: tr.Threshold.Raw,
			Label:     tr.Threshold.Label,
			Metric:    tr.Threshold.Metric,
			Operator:  tr.Threshold.Operator,
			Expected:  tr.Threshold.Value,
			Actual:    tr.Actual,
			Series:    tr.Series,
			Steps:     tr.Steps,
			Pass:      tr.Pass,
		}
		if tr.Pass {
			ts.Passed++
		} else {
			ts.Failed++
		}
	}
	return ts
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, s Summary) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", s.RunID)
	fmt.Fprintf(w, "Comparison:        %s\n", s.Comparison)
	fmt.Fprintf(w, "Grid:              %dx%d (prob=%g)\n", s.Workload.Width, s.Workload.Height, s.Workload.Prob)
	fmt.Fprintf(w, "Repeats:           %d\n", s.Workload.Repeats)
	fmt.Fprintf(w, "Trials:            %d\n", s.Trials)
	fmt.Fprintf(w, "Duration:          %s\n", time.Duration(s.DurationMs*float64(time.Millisecond)).Round(time.Millisecond))

	if len(s.Series) > 0 {
		fmt.Fprintln(w, "\nSeries:")
		for _, series := range s.Series {
			fmt.Fprintf(w, "  %s (%s):\n", series.Label, series.Exe)
			for _, p := range series.Points {
				fmt.Fprintf(w, "    steps=%-8d mean=%.2fms sd=%.2fms min=%.2fms max=%.2fms", p.Steps, p.MeanMs, p.StdDevMs, p.MinMs, p.MaxMs)
				if p.ChangePct != nil {
					fmt.Fprintf(w, " baseline=%.2fms (%+.1f%%)", *p.BaselineMeanMs, *p.ChangePct)
				}
				fmt.Fprintln(w)
			}
		}
	}

	if len(s.Skipped) > 0 {
		fmt.Fprintln(w, "\nSkipped (program not found):")
		for _, skip := range s.Skipped {
			fmt.Fprintf(w, "  - %s: %s\n", skip.Label, skip.Program)
		}
	}

	if s.Thresholds != nil {
		fmt.Fprintf(w, "\nThresholds: %d/%d passed\n", s.Thresholds.Passed, s.Thresholds.Total)
		for _, r := range s.Thresholds.Results {
			status := "PASS"
			if !r.Pass {
				status = "FAIL"
			}
			fmt.Fprintf(w, "  [%s] %s (actual %.2f)\n", status, r.Threshold, r.Actual)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteJSONFile writes the JSON report to path.
func WriteJSONFile(path string, s Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create JSON report: %w", err)
	}
	if err := PrintJSONReport(file, s); err != nil {
		file.Close()
		return fmt.Errorf("write JSON report: %w", err)
	}
	return file.Close()
}
