package extractor

import (
	"fmt"
	"regexp"
)

// Regex extracts the first capture group of the first match, or the full
// match when the pattern has no group.
type Regex struct {
	re *regexp.Regexp
}

func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid timing pattern %q: %w", pattern, err)
	}
	return &Regex{re: re}, nil
}

func (r *Regex) Extract(output []byte) (string, bool) {
	match := r.re.FindSubmatch(output)
	if match == nil {
		return "", false
	}
	if len(match) > 1 {
		return string(match[1]), true
	}
	return string(match[0]), true
}

func (r *Regex) Describe() string {
	return "pattern " + r.re.String()
}
