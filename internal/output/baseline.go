package output

import (
	"github.com/torosent/lifebench/internal/runner"
)

// Delta compares one current row against the matching baseline row.
type Delta struct {
	Row            runner.Row `json:"-"`
	BaselineMeanMs float64    `json:"baseline_mean_ms"`
	ChangePct      float64    `json:"change_pct"`
}

type rowKey struct {
	variant, mode, blockRows string
	steps                    int
}

func keyOf(r runner.Row) rowKey {
	return rowKey{variant: r.Variant, mode: r.Mode, blockRows: r.BlockRows, steps: r.Steps}
}

// CompareBaseline pairs current rows with baseline rows of the same
// configuration and step count. Rows without a counterpart are left out.
// ChangePct is positive when the current run is slower.
func CompareBaseline(current, baseline []runner.Row) []Delta {
	prev := make(map[rowKey]runner.Row, len(baseline))
	for _, r := range baseline {
		prev[keyOf(r)] = r
	}

	var deltas []Delta
	for _, r := range current {
		b, ok := prev[keyOf(r)]
		if !ok {
			continue
		}
		d := Delta{Row: r, BaselineMeanMs: b.MeanMs}
		if b.MeanMs != 0 {
			d.ChangePct = (r.MeanMs - b.MeanMs) / b.MeanMs * 100
		}
		deltas = append(deltas, d)
	}
	return deltas
}
