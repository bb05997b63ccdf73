// Package extractor pulls the timing measurement out of a benchmarked
// program's standard output, either with a regex or a JSON path.
package extractor

// DefaultTimingPattern matches the "time_ms=<real>" token simulators print.
const DefaultTimingPattern = `time_ms=([0-9]*\.?[0-9]+)`

// Extractor locates a single value in program output.
type Extractor interface {
	// Extract returns the first matching value and whether one was found.
	Extract(output []byte) (string, bool)
	// Describe names the rule for diagnostics.
	Describe() string
}

// New returns a JSON path extractor when jsonPath is set and otherwise a regex
// extractor for pattern (DefaultTimingPattern when empty).
func New(pattern, jsonPath string) (Extractor, error) {
	if jsonPath != "" {
		return NewJSONPath(jsonPath), nil
	}
	if pattern == "" {
		pattern = DefaultTimingPattern
	}
	return NewRegex(pattern)
}
