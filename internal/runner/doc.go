// Package runner executes a planned sweep: for every target it collects one
// series by running each step count a fixed number of times.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Executor: executor,
//		Resolver: space.NewResolver("build"),
//		Workload: space.Workload{Width: 160, Height: 96, Prob: 0.25},
//		Steps:    []int{500, 1000},
//		Repeats:  3,
//	})
//	result, err := r.Run(ctx, targets)
//
// # Scheduling
//
// Trials run strictly one at a time in plan order; the programs under test may
// be internally parallel, and that is what is measured. An optional
// [Options.RatePerSecond] paces trial starts.
//
// # Failure Policy
//
// A target whose program does not exist is skipped and recorded in
// [Result.Skipped]. Any other trial failure stops the sweep and is returned
// with the series label and step count attached.
package runner
