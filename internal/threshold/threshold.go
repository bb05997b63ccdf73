package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/torosent/lifebench/internal/metrics"
	"github.com/torosent/lifebench/internal/runner"
)

// Threshold is an assertion checked against every point of the matching
// series once the sweep has finished.
type Threshold struct {
	Label    string  // series label filter; empty matches every series
	Metric   string  // e.g. "mean_ms", "sd_ms"
	Operator string  // e.g. "<", "<=", ">", ">=", "=="
	Value    float64 // the threshold value to compare against
	Raw      string  // original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Series    string // label of the series holding Actual
	Steps     int
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against collected series.
type Evaluator struct {
	thresholds []Threshold
}

func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks all thresholds against the provided series.
func (e *Evaluator) Evaluate(series []runner.Series) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, e.evaluateOne(t, series))
	}
	return results
}

// evaluateOne reports the worst point among the matching series: the largest
// value for an upper bound and the smallest for a lower bound. Once a point
// has failed, only another failing point can take its place.
func (e *Evaluator) evaluateOne(t Threshold, series []runner.Series) Result {
	res := Result{Threshold: t, Pass: true}
	matched := false

	for _, s := range series {
		if t.Label != "" && s.Label != t.Label {
			continue
		}
		for _, p := range s.Points {
			actual, err := extractMetricValue(t.Metric, p.Stats)
			if err != nil {
				return Result{Threshold: t, Message: fmt.Sprintf("error: %v", err)}
			}
			pass := compareValues(actual, t.Operator, t.Value)
			if !matched || replaces(t.Operator, res, actual, pass) {
				res.Actual, res.Series, res.Steps = actual, s.Label, p.Steps
			}
			matched = true
			if !pass {
				res.Pass = false
			}
		}
	}

	if !matched {
		res.Pass = false
		res.Message = fmt.Sprintf("✗ %s: no series matched", t.Raw)
		return res
	}

	status := "✓"
	if !res.Pass {
		status = "✗"
	}
	res.Message = fmt.Sprintf("%s %s: %.2f %s %.2f (%s, steps=%d)", status, t.Raw, res.Actual, t.Operator, t.Value, res.Series, res.Steps)
	return res
}

func replaces(operator string, current Result, actual float64, pass bool) bool {
	if !current.Pass {
		return !pass && worse(operator, actual, current.Actual)
	}
	return !pass || worse(operator, actual, current.Actual)
}

func worse(operator string, actual, current float64) bool {
	switch operator {
	case ">", ">=":
		return actual < current
	default:
		return actual > current
	}
}

var thresholdPattern = regexp.MustCompile(`^(?:(.+?)\s*:\s*)?([a-z0-9_]+)\s*(<=|>=|==|<|>)\s*([0-9]*\.?[0-9]+)$`)

// Parse parses a threshold string in the format "[label:]metric operator value".
// Examples:
// - "mean_ms < 500"                        (every series)
// - "sd_ms <= 25"                          (run-to-run spread)
// - "parallel-for:mean_ms < 200"           (one series by label)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: [label:]metric operator value, e.g., 'mean_ms < 500')", s)
	}

	label := strings.TrimSpace(matches[1])
	metric := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: %s)", metric, strings.Join(validMetrics, ", "))
	}

	return Threshold{
		Label:    label,
		Metric:   metric,
		Operator: operator,
		Value:    value,
		Raw:      s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

var validMetrics = []string{"mean_ms", "sd_ms", "min_ms", "max_ms", "p50_ms", "p90_ms"}

func isValidMetric(metric string) bool {
	for _, v := range validMetrics {
		if metric == v {
			return true
		}
	}
	return false
}

func extractMetricValue(metric string, stats metrics.Stats) (float64, error) {
	switch metric {
	case "mean_ms":
		return stats.MeanMs, nil
	case "sd_ms":
		return stats.StdDevMs, nil
	case "min_ms":
		return stats.MinMs, nil
	case "max_ms":
		return stats.MaxMs, nil
	case "p50_ms":
		return stats.P50Ms, nil
	case "p90_ms":
		return stats.P90Ms, nil
	default:
		return 0, fmt.Errorf("unknown metric: %s", metric)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
