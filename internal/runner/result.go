package runner

import (
	"strconv"
	"time"

	"github.com/torosent/lifebench/internal/metrics"
	"github.com/torosent/lifebench/internal/space"
)

// Point is the aggregate for one step count.
type Point struct {
	Steps int
	Stats metrics.Stats
}

// Series is one labeled curve for a configuration. It is immutable once
// returned by the Runner.
type Series struct {
	Label   string
	Config  space.Configuration
	Program string
	Points  []Point
}

// Row is the flattened, persisted form of one point.
type Row struct {
	Variant   string
	Mode      string
	BlockRows string
	Steps     int
	MeanMs    float64
	SdMs      float64
	Exe       string
}

// Rows flattens the series in point order.
func (s Series) Rows() []Row {
	blockRows := ""
	if rows, ok := s.Config.Strategy.BlockRows(); ok {
		blockRows = strconv.Itoa(rows)
	}
	out := make([]Row, 0, len(s.Points))
	for _, p := range s.Points {
		out = append(out, Row{
			Variant:   s.Config.Variant.DisplayName(),
			Mode:      s.Config.Strategy.Mode().DisplayName(),
			BlockRows: blockRows,
			Steps:     p.Steps,
			MeanMs:    p.Stats.MeanMs,
			SdMs:      p.Stats.StdDevMs,
			Exe:       s.Program,
		})
	}
	return out
}

// Skip records a target left out because its program is missing.
type Skip struct {
	Label   string `json:"label"`
	Program string `json:"program"`
}

// Result captures a completed sweep.
type Result struct {
	Series   []Series
	Skipped  []Skip
	Trials   int // completed trials only
	Duration time.Duration
}

// Rows flattens every series in plan order.
func (r Result) Rows() []Row {
	var rows []Row
	for _, s := range r.Series {
		rows = append(rows, s.Rows()...)
	}
	return rows
}
