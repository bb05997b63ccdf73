package trial

import (
	"strconv"

	"github.com/torosent/lifebench/internal/space"
)

// Invocation is one fully specified program run.
type Invocation struct {
	Program  string
	Workload space.Workload
	Config   space.Configuration
	Rule     string
}

// Args renders the simulator argument contract. --threads is emitted only
// for modes that accept it and only when an override is set; --blockrows only
// for the tasks mode; --rule only when a rule is supplied.
func (inv Invocation) Args() []string {
	w := inv.Workload
	args := []string{
		"--no-draw",
		"--steps", strconv.Itoa(w.Steps),
		"--prob", strconv.FormatFloat(w.Prob, 'g', -1, 64),
		"--width", strconv.Itoa(w.Width),
		"--height", strconv.Itoa(w.Height),
	}
	mode := inv.Config.Strategy.Mode()
	if mode.SupportsThreads() && inv.Config.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(inv.Config.Threads))
	}
	if rows, ok := inv.Config.Strategy.BlockRows(); ok {
		args = append(args, "--blockrows", strconv.Itoa(rows))
	}
	if inv.Rule != "" {
		args = append(args, "--rule", inv.Rule)
	}
	return args
}
