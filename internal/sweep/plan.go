// Package sweep expands a requested slice of the configuration space into the
// ordered list of labeled targets a benchmark run collects.
package sweep

import (
	"fmt"
	"strings"

	"github.com/torosent/lifebench/internal/space"
)

// Comparison selects how targets are grouped and labeled.
type Comparison string

const (
	// CompareFree benchmarks the cartesian product of variants and modes.
	CompareFree Comparison = "free"
	// CompareParallel fixes one variant and compares modes against each other.
	CompareParallel Comparison = "parallel"
	// CompareVariants fixes one mode and compares variants against each other.
	CompareVariants Comparison = "variants"
)

// ParseComparison validates a comparison mode name.
func ParseComparison(s string) (Comparison, error) {
	switch c := Comparison(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompareFree, nil
	case CompareFree, CompareParallel, CompareVariants:
		return c, nil
	default:
		return "", fmt.Errorf("comparison mode %q is not supported (use free, parallel or variants)", s)
	}
}

// DefaultVariants is the selection used when the caller does not choose.
var DefaultVariants = []string{"default"}

// InvalidComparisonError reports a selection the comparison mode cannot fix.
type InvalidComparisonError struct {
	Comparison Comparison
	Reason     string
}

func (e *InvalidComparisonError) Error() string {
	return fmt.Sprintf("invalid %s comparison: %s", e.Comparison, e.Reason)
}

// MissingRuleError reports a rule-driven variant selected without a rule.
type MissingRuleError struct {
	Variant space.Variant
}

func (e *MissingRuleError) Error() string {
	return fmt.Sprintf("variant %s requires a rule string (--rule)", e.Variant.Key())
}

// Request is the caller's view of the space to sweep.
type Request struct {
	// Variants left empty means the default selection.
	Variants   []string
	Modes      []string
	BlockRows  []int
	Comparison Comparison
	Threads    int
	Rule       string
}

// Target is one series to collect.
type Target struct {
	Config space.Configuration
	Label  string
}

// Plan validates the request and enumerates targets in variant, mode,
// block-row order. Nothing is launched here.
func Plan(req Request) ([]Target, error) {
	comparison := req.Comparison
	if comparison == "" {
		comparison = CompareFree
	}

	variantKeys := req.Variants
	if len(variantKeys) == 0 {
		variantKeys = defaultVariantKeys(comparison, req.Rule)
	}

	sel, err := space.Select(variantKeys, req.Modes)
	if err != nil {
		return nil, err
	}
	if len(sel.Modes) == 0 {
		return nil, fmt.Errorf("at least one mode is required")
	}

	for _, v := range sel.Variants {
		if v.RequiresRule() && strings.TrimSpace(req.Rule) == "" {
			return nil, &MissingRuleError{Variant: v}
		}
	}

	switch comparison {
	case CompareParallel:
		if len(sel.Variants) != 1 {
			return nil, &InvalidComparisonError{
				Comparison: comparison,
				Reason:     fmt.Sprintf("exactly one variant must be selected, got %d", len(sel.Variants)),
			}
		}
	case CompareVariants:
		if len(sel.Modes) != 1 {
			return nil, &InvalidComparisonError{
				Comparison: comparison,
				Reason:     fmt.Sprintf("exactly one mode must be selected, got %d", len(sel.Modes)),
			}
		}
	case CompareFree:
	default:
		return nil, fmt.Errorf("comparison mode %q is not supported", comparison)
	}

	var targets []Target
	for _, v := range sel.Variants {
		for _, m := range sel.Modes {
			strategies, err := strategiesFor(m, req.BlockRows)
			if err != nil {
				return nil, err
			}
			for _, s := range strategies {
				cfg := space.Configuration{Variant: v, Strategy: s, Threads: req.Threads}
				targets = append(targets, Target{
					Config: cfg,
					Label:  label(comparison, cfg, len(req.BlockRows) > 1),
				})
			}
		}
	}
	return targets, nil
}

func defaultVariantKeys(comparison Comparison, rule string) []string {
	if comparison != CompareVariants {
		return DefaultVariants
	}
	var keys []string
	for _, v := range space.Variants() {
		if v.RequiresRule() && strings.TrimSpace(rule) == "" {
			continue
		}
		keys = append(keys, v.Key())
	}
	return keys
}

func strategiesFor(m space.Mode, blockRows []int) ([]space.Strategy, error) {
	if !m.UsesBlockRows() {
		s, err := space.NewStrategy(m, 0)
		if err != nil {
			return nil, err
		}
		return []space.Strategy{s}, nil
	}
	if len(blockRows) == 0 {
		return nil, fmt.Errorf("mode %s requires at least one blockrows value", m.Key())
	}
	out := make([]space.Strategy, 0, len(blockRows))
	for _, rows := range blockRows {
		s, err := space.NewStrategy(m, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func label(comparison Comparison, cfg space.Configuration, manyBlockRows bool) string {
	switch comparison {
	case CompareParallel:
		return cfg.Strategy.String()
	case CompareVariants:
		name := cfg.Variant.DisplayName()
		if rows, ok := cfg.Strategy.BlockRows(); ok && manyBlockRows {
			name += fmt.Sprintf(" (blockrows=%d)", rows)
		}
		return name
	default:
		return cfg.Variant.DisplayName() + " / " + cfg.Strategy.String()
	}
}
