package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/concourse/pkg/asyncx"
	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/logx"
)

// Aggregator gathers a set of calls concurrently.
type Aggregator struct {
	fetcher        Fetcher
	defaultTimeout time.Duration
	maxConcurrent  int
}

// Option configures the aggregator.
type Option func(*Aggregator)

// WithDefaultTimeout sets the timeout applied to calls that carry none.
func WithDefaultTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.defaultTimeout = d
		}
	}
}

// WithMaxConcurrent bounds in-flight calls via a worker pool. Zero leaves
// concurrency unbounded (every call starts at the same logical instant).
func WithMaxConcurrent(n int) Option {
	return func(a *Aggregator) {
		a.maxConcurrent = n
	}
}

// NewAggregator creates an Aggregator around the given fetcher.
func NewAggregator(fetcher Fetcher, options ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:        fetcher,
		defaultTimeout: 5 * time.Second,
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// Gather issues every call concurrently and returns one Result per call, in
// input order. It never returns an error: per-call failures live in their
// result slots.
func (a *Aggregator) Gather(ctx context.Context, calls []Call) []Result {
	if len(calls) == 0 {
		return []Result{}
	}

	run := func(ctx context.Context, c Call) (Result, error) {
		return a.single(ctx, c), nil
	}

	if a.maxConcurrent > 0 {
		settled := asyncx.Pool(ctx, a.maxConcurrent, calls, run)
		results := make([]Result, len(settled))
		for i, s := range settled {
			if s.Err != nil {
				// Only a cancelled pool context lands here.
				results[i] = Result{Target: calls[i].Target, Err: s.Err}
				continue
			}
			results[i] = s.Value
		}
		return results
	}

	results, _ := asyncx.Map(ctx, calls, run)
	return results
}

// single settles one call, translating transport failures into typed errors.
func (a *Aggregator) single(ctx context.Context, call Call) Result {
	timeout := call.Timeout
	if timeout <= 0 {
		timeout = a.defaultTimeout
	}

	start := time.Now()
	payload, err := asyncx.WithTimeout(ctx, timeout, func(ctx context.Context) (json.RawMessage, error) {
		return a.fetcher.Fetch(ctx, call.Target)
	})
	latency := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			err = ErrRegistry.NewWithCause(CodeCallTimeout, err).
				WithDetail("target", call.Target).
				WithDetail("timeout", timeout.String())
		case !errx.IsType(err, errx.TypeExternal):
			err = ErrRegistry.NewWithCause(CodeCallFailed, err).WithDetail("target", call.Target)
		}
		logx.WithError(err).WithField("target", call.Target).Warn("fanout: call settled with error")
		return Result{Target: call.Target, Err: err, Latency: latency}
	}

	return Result{Target: call.Target, Payload: payload, Latency: latency}
}
