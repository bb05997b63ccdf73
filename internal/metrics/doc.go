// Package metrics aggregates the repeated measurements of one configuration
// and workload into summary statistics.
//
// A [TrialSet] accumulates elapsed times in milliseconds:
//
//	set := metrics.NewTrialSet()
//	set.Record(10.2)
//	set.Record(9.8)
//	stats := set.Stats()
//
// Mean and population standard deviation are computed with Welford's online
// update, so a set of identical measurements reports that exact value as the
// mean and a deviation of zero. A single measurement always reports a
// deviation of zero.
//
// Percentiles come from an HDR histogram at microsecond resolution and are
// informational only; the durable results table carries mean and deviation.
//
// A TrialSet is not safe for concurrent use. Trials run one at a time.
package metrics
