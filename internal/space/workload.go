package space

import "fmt"

// Workload is the problem size for one run. Width, Height and Prob stay fixed
// for a sweep while Steps varies.
type Workload struct {
	Width  int
	Height int
	Prob   float64
	Steps  int
}

// WithSteps returns a copy of w with the step count substituted.
func (w Workload) WithSteps(steps int) Workload {
	w.Steps = steps
	return w
}

func (w Workload) Validate() error {
	switch {
	case w.Width <= 0 || w.Height <= 0:
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", w.Width, w.Height)
	case w.Prob < 0 || w.Prob > 1:
		return fmt.Errorf("probability must be within [0,1], got %g", w.Prob)
	case w.Steps <= 0:
		return fmt.Errorf("steps must be positive, got %d", w.Steps)
	}
	return nil
}
