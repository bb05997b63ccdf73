package space

import (
	"fmt"
	"strings"
)

// UnknownKeyError reports a requested key that is absent from its vocabulary.
type UnknownKeyError struct {
	Kind    string
	Key     string
	Allowed []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s %q (allowed: %s)", e.Kind, e.Key, strings.Join(e.Allowed, ", "))
}

// Strategy is a concurrency mode together with its mode-specific
// sub-parameter. A block-row count is carried only by ModeParallelTasks.
type Strategy struct {
	mode      Mode
	blockRows int
}

// NewStrategy builds a Strategy, rejecting a sub-parameter the mode does not
// take and a missing one the mode requires.
func NewStrategy(mode Mode, blockRows int) (Strategy, error) {
	if !mode.valid() {
		return Strategy{}, fmt.Errorf("invalid mode %d", int(mode))
	}
	if mode.UsesBlockRows() {
		if blockRows <= 0 {
			return Strategy{}, fmt.Errorf("mode %s requires blockrows > 0", mode.Key())
		}
		return Strategy{mode: mode, blockRows: blockRows}, nil
	}
	if blockRows != 0 {
		return Strategy{}, fmt.Errorf("mode %s does not take blockrows", mode.Key())
	}
	return Strategy{mode: mode}, nil
}

func (s Strategy) Mode() Mode { return s.mode }

// BlockRows returns the block-row granularity, if the mode carries one.
func (s Strategy) BlockRows() (int, bool) {
	if !s.mode.UsesBlockRows() {
		return 0, false
	}
	return s.blockRows, true
}

func (s Strategy) String() string {
	if rows, ok := s.BlockRows(); ok {
		return fmt.Sprintf("%s (blockrows=%d)", s.mode.DisplayName(), rows)
	}
	return s.mode.DisplayName()
}

// Configuration identifies one benchmarking target.
type Configuration struct {
	Variant  Variant
	Strategy Strategy
	// Threads overrides the program's thread count; 0 keeps its default.
	Threads int
}

// Selection is a validated set of variants and modes.
type Selection struct {
	Variants []Variant
	Modes    []Mode
}

// Select validates the requested keys against the vocabularies, preserving
// request order. The first unknown key fails the whole selection.
func Select(variantKeys, modeKeys []string) (Selection, error) {
	var sel Selection
	for _, key := range variantKeys {
		v, err := ParseVariant(key)
		if err != nil {
			return Selection{}, err
		}
		sel.Variants = append(sel.Variants, v)
	}
	for _, key := range modeKeys {
		m, err := ParseMode(key)
		if err != nil {
			return Selection{}, err
		}
		sel.Modes = append(sel.Modes, m)
	}
	return sel, nil
}
