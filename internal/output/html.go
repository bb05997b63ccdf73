package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	Summary     Summary
	Title       string
	GeneratedAt string
	ChartJSON   string
}

type chartData struct {
	Steps  []int         `json:"steps"`
	Series []chartSeries `json:"series"`
}

type chartSeries struct {
	Label string     `json:"label"`
	Means []*float64 `json:"means"`
}

// buildChartData aligns every series on the sweep's step list. A step a
// series has no point for is left null so uPlot draws a gap.
func buildChartData(s Summary) chartData {
	data := chartData{Steps: s.Workload.Steps}
	for _, series := range s.Series {
		byStep := make(map[int]float64, len(series.Points))
		for _, p := range series.Points {
			byStep[p.Steps] = p.MeanMs
		}
		cs := chartSeries{Label: series.Label, Means: make([]*float64, len(data.Steps))}
		for i, steps := range data.Steps {
			if mean, ok := byStep[steps]; ok {
				cs.Means[i] = &mean
			}
		}
		data.Series = append(data.Series, cs)
	}
	return data
}

// GenerateHTMLReport generates a standalone HTML report with an embedded chart.
func GenerateHTMLReport(w io.Writer, s Summary, title string) error {
	chartJSON, err := json.Marshal(buildChartData(s))
	if err != nil {
		return fmt.Errorf("failed to marshal chart data: %w", err)
	}

	data := HTMLReportData{
		Summary:     s,
		Title:       title,
		GeneratedAt: s.GeneratedAt.Format(time.RFC3339),
		ChartJSON:   string(chartJSON),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatDuration": func(ms float64) string {
			return time.Duration(ms * float64(time.Millisecond)).Round(time.Millisecond).String()
		},
		"changeClass": func(pct *float64) string {
			if pct != nil && *pct > 0 {
				return "slower"
			}
			return "faster"
		},
		"formatChange": func(pct *float64) string {
			if pct == nil {
				return "-"
			}
			return fmt.Sprintf("%+.1f%%", *pct)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// WriteHTMLFile writes the HTML report to path.
func WriteHTMLFile(path string, s Summary, title string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create HTML report: %w", err)
	}
	if err := GenerateHTMLReport(file, s, title); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Lifebench Report {{.Summary.RunID}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .card.warning {
            border-left-color: #f59e0b;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        .chart-container {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 30px;
            border: 1px solid #e5e7eb;
        }
        .chart-container h3 {
            font-size: 1.1rem;
            margin-bottom: 15px;
            color: #4b5563;
        }
        .chart {
            width: 100%;
            height: 400px;
        }
        .slower {
            color: #991b1b;
        }
        .faster {
            color: #065f46;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
    </style>
    <script src="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.iife.min.js"></script>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.min.css">
</head>
<body>
    <div class="container">
        <header>
            <h1>Lifebench Report</h1>
            <div class="meta">{{.Title}}</div>
            <div class="meta">Run: {{.Summary.RunID}} | Generated: {{.GeneratedAt}} | Duration: {{formatDuration .Summary.DurationMs}}</div>
        </header>

        <div class="content">
            <div class="grid">
                <div class="card">
                    <h3>Series</h3>
                    <div class="value">{{len .Summary.Series}}</div>
                </div>
                <div class="card success">
                    <h3>Trials</h3>
                    <div class="value">{{.Summary.Trials}}</div>
                    <div class="subvalue">{{.Summary.Workload.Repeats}} per point</div>
                </div>
                <div class="card warning">
                    <h3>Skipped</h3>
                    <div class="value">{{len .Summary.Skipped}}</div>
                </div>
                <div class="card">
                    <h3>Grid</h3>
                    <div class="value">{{.Summary.Workload.Width}}x{{.Summary.Workload.Height}}</div>
                    <div class="subvalue">prob={{.Summary.Workload.Prob}}{{if .Summary.Workload.Threads}} threads={{.Summary.Workload.Threads}}{{end}}</div>
                </div>
            </div>

            {{if .Summary.Series}}
            <div class="section">
                <h2>Mean Time vs Steps</h2>
                <div class="chart-container">
                    <div id="steps-chart" class="chart"></div>
                </div>
            </div>

            <div class="section">
                <h2>Results</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Series</th>
                            <th>Steps</th>
                            <th>Mean (ms)</th>
                            <th>SD (ms)</th>
                            <th>Min (ms)</th>
                            <th>Max (ms)</th>
                            <th>vs Baseline</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Summary.Series}}
                        {{$series := .}}
                        {{range .Points}}
                        <tr>
                            <td><strong>{{$series.Label}}</strong><br><small>{{$series.Exe}}</small></td>
                            <td>{{.Steps}}</td>
                            <td>{{formatFloat .MeanMs}}</td>
                            <td>{{formatFloat .StdDevMs}}</td>
                            <td>{{formatFloat .MinMs}}</td>
                            <td>{{formatFloat .MaxMs}}</td>
                            <td>{{if .ChangePct}}<span class="{{changeClass .ChangePct}}">{{formatChange .ChangePct}}</span>{{else}}-{{end}}</td>
                        </tr>
                        {{end}}
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{else}}
            <div class="no-data">No results were collected.</div>
            {{end}}

            {{if .Summary.Thresholds}}
            <div class="section">
                <h2>Thresholds ({{.Summary.Thresholds.Passed}}/{{.Summary.Thresholds.Total}} Passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Worst Point</th>
                            <th>Expected</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Summary.Thresholds.Results}}
                        <tr>
                            <td>{{.Threshold}}</td>
                            <td>{{if .Series}}{{.Series}} (steps={{.Steps}}){{else}}-{{end}}</td>
                            <td>{{.Operator}} {{formatFloat .Expected}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            <td>
                                {{if .Pass}}
                                <span class="badge badge-success">✓ PASS</span>
                                {{else}}
                                <span class="badge badge-error">✗ FAIL</span>
                                {{end}}
                            </td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            {{if .Summary.Skipped}}
            <div class="section">
                <h2>Skipped Series</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Series</th>
                            <th>Program</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Summary.Skipped}}
                        <tr>
                            <td>{{.Label}}</td>
                            <td>{{.Program}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>

    {{if .Summary.Series}}
    <script>
        const chart = JSON.parse({{.ChartJSON}});
        const palette = ["#667eea", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#06b6d4", "#ec4899", "#84cc16"];
        const el = document.getElementById('steps-chart');

        new uPlot({
            width: el.offsetWidth,
            height: 400,
            scales: { x: { time: false } },
            series: [{ label: "Steps" }].concat(chart.series.map((s, i) => ({
                label: s.label,
                stroke: palette[i % palette.length],
                width: 2,
                points: { show: true }
            }))),
            axes: [
                { label: "Steps" },
                { label: "Mean time (ms)" }
            ]
        }, [chart.steps].concat(chart.series.map(s => s.means)), el);
    </script>
    {{end}}
</body>
</html>
`
