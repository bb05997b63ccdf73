package runner

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/torosent/lifebench/internal/space"
	"github.com/torosent/lifebench/internal/trial"
)

// Options configure the Runner.
type Options struct {
	Executor       trial.Executor                  // trial executor (required)
	Resolver       space.Resolver                  // maps configurations to programs
	Workload       space.Workload                  // base workload; Steps is substituted per point
	Steps          []int                           // step counts, in output order
	Repeats        int                             // trials per step count
	Rule           string                          // forwarded to every invocation when set
	RatePerSecond  float64                         // trial start pacing (0 means unlimited)
	LimiterFactory func(rps float64) *rate.Limiter // optional injection for tests
	Tracer         trace.Tracer                    // optional series spans
	Logger         *slog.Logger
	Progress       io.Writer // one line per completed point
}

func (o *Options) normalize() {
	if o.Repeats <= 0 {
		o.Repeats = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps float64) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}
