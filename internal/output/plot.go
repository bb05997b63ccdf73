package output

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/torosent/lifebench/internal/runner"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// PlotTitle formats the chart title from the workload and comparison mode.
func PlotTitle(width, height int, comparison string, threads int) string {
	title := fmt.Sprintf("Total time vs Steps (%dx%d) [compare=%s]", width, height, comparison)
	if threads > 0 {
		title += fmt.Sprintf(" [threads=%d]", threads)
	}
	return title
}

// seriesXYs adapts a series to the plotter XYer and YErrorer interfaces:
// x is the step count, y the mean and the error the standard deviation.
type seriesXYs []runner.Point

func (s seriesXYs) Len() int { return len(s) }

func (s seriesXYs) XY(i int) (float64, float64) {
	return float64(s[i].Steps), s[i].Stats.MeanMs
}

func (s seriesXYs) YError(i int) (float64, float64) {
	return s[i].Stats.StdDevMs, s[i].Stats.StdDevMs
}

// NewPlot builds one error-bar line per series on shared axes, in series
// order.
func NewPlot(series []runner.Series, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Steps"
	p.Y.Label.Text = "Mean time (ms)"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := seriesXYs(s.Points)

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Dashes = plotutil.Dashes(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = plotutil.Shape(i)

		bars, err := plotter.NewYErrorBars(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		bars.LineStyle.Color = plotutil.Color(i)

		p.Add(line, points, bars)
		p.Legend.Add(s.Label, line, points)
	}
	return p, nil
}

// SavePlot renders the series to path. The image format follows the file
// extension (png, svg, pdf, ...).
func SavePlot(path string, series []runner.Series, title string) error {
	p, err := NewPlot(series, title)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// WritePlot renders the series to w in the given format.
func WritePlot(w io.Writer, series []runner.Series, title, format string) error {
	p, err := NewPlot(series, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, strings.TrimPrefix(format, "."))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
