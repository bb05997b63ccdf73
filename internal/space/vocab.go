// Package space models the benchmark configuration space: the closed
// vocabularies of simulator variants and concurrency modes, the Configuration
// value built from them, and the resolution of a Configuration to the external
// program that implements it.
package space

import (
	"fmt"
	"sort"
	"strings"
)

// Variant identifies a simulator rule-set family.
type Variant int

const (
	VariantDefault Variant = iota
	VariantAntiLife
	VariantInverse
	VariantCustom
)

// Mode identifies a concurrency strategy the simulator is compiled under.
type Mode int

const (
	ModeSequential Mode = iota
	ModeParallelFor
	ModeParallelTasks
	ModeParallelForSIMD
)

type variantInfo struct {
	key          string
	name         string
	requiresRule bool
}

type modeInfo struct {
	key           string
	name          string
	suffix        string
	threads       bool
	usesBlockRows bool
}

// Declaration order is the vocabulary order used for auto-expansion.
var variants = []variantInfo{
	VariantDefault:  {key: "default", name: "default"},
	VariantAntiLife: {key: "antilife", name: "antiLife"},
	VariantInverse:  {key: "inverse", name: "invertAmazeLife"},
	VariantCustom:   {key: "custom", name: "customLife", requiresRule: true},
}

var modes = []modeInfo{
	ModeSequential:      {key: "seq", name: "sequential", suffix: "sequential"},
	ModeParallelFor:     {key: "pfor", name: "parallel-for", suffix: "openMP_parallel_for", threads: true},
	ModeParallelTasks:   {key: "tasks", name: "parallel-tasks", suffix: "openMP_parallel_tasks", threads: true, usesBlockRows: true},
	ModeParallelForSIMD: {key: "simd", name: "parallel-for-simd", suffix: "openMP_parallel_for_simd", threads: true},
}

// Variants returns every known variant in vocabulary order.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	for i := range variants {
		out[i] = Variant(i)
	}
	return out
}

// Modes returns every known mode in vocabulary order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	for i := range modes {
		out[i] = Mode(i)
	}
	return out
}

func (v Variant) valid() bool { return v >= 0 && int(v) < len(variants) }
func (m Mode) valid() bool    { return m >= 0 && int(m) < len(modes) }

// Key returns the short symbolic key used on the command line.
func (v Variant) Key() string {
	if !v.valid() {
		return fmt.Sprintf("variant(%d)", int(v))
	}
	return variants[v].key
}

// DisplayName returns the canonical name, which is also the program prefix.
func (v Variant) DisplayName() string {
	if !v.valid() {
		return v.Key()
	}
	return variants[v].name
}

// RequiresRule reports whether the variant needs an explicit rule string.
func (v Variant) RequiresRule() bool {
	return v.valid() && variants[v].requiresRule
}

func (v Variant) String() string { return v.DisplayName() }

func (m Mode) Key() string {
	if !m.valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modes[m].key
}

func (m Mode) DisplayName() string {
	if !m.valid() {
		return m.Key()
	}
	return modes[m].name
}

// Suffix is appended to the variant name to form the program identifier.
func (m Mode) Suffix() string {
	if !m.valid() {
		return m.Key()
	}
	return modes[m].suffix
}

// SupportsThreads reports whether the program accepts a --threads override.
func (m Mode) SupportsThreads() bool {
	return m.valid() && modes[m].threads
}

// UsesBlockRows reports whether the mode requires a block-row sub-parameter.
func (m Mode) UsesBlockRows() bool {
	return m.valid() && modes[m].usesBlockRows
}

func (m Mode) String() string { return m.DisplayName() }

// ParseVariant looks up a variant by key, case-insensitively.
func ParseVariant(key string) (Variant, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, info := range variants {
		if info.key == k {
			return Variant(i), nil
		}
	}
	return 0, &UnknownKeyError{Kind: "variant", Key: key, Allowed: VariantKeys()}
}

// ParseMode looks up a mode by key, case-insensitively.
func ParseMode(key string) (Mode, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for i, info := range modes {
		if info.key == k {
			return Mode(i), nil
		}
	}
	return 0, &UnknownKeyError{Kind: "mode", Key: key, Allowed: ModeKeys()}
}

// VariantKeys returns the sorted set of accepted variant keys.
func VariantKeys() []string {
	keys := make([]string, len(variants))
	for i, info := range variants {
		keys[i] = info.key
	}
	sort.Strings(keys)
	return keys
}

// ModeKeys returns the sorted set of accepted mode keys.
func ModeKeys() []string {
	keys := make([]string, len(modes))
	for i, info := range modes {
		keys[i] = info.key
	}
	sort.Strings(keys)
	return keys
}
