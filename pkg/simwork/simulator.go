package simwork

import (
	"context"
	"time"
)

// Simulator executes a single simulated I/O wait.
//
// The wait is timer-based: the goroutine parks on a timer channel instead of
// holding an OS thread, so many simulations can be in flight on a small
// worker set. The dispatcher's concurrency numbers depend on this.
type Simulator struct{}

// NewSimulator creates a Simulator.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Simulate waits for the unit's duration and reports on it.
//
// A negative duration is a contract violation and is rejected before any
// waiting happens. Simulated work itself cannot fail; the only failure path
// is the caller's context being cancelled mid-wait.
func (s *Simulator) Simulate(ctx context.Context, unit WorkUnit) (ExecutionReport, error) {
	if unit.Duration < 0 {
		return ExecutionReport{}, ErrNegativeDuration().
			WithDetail("unit_id", unit.ID).
			WithDetail("duration", unit.Duration.String())
	}

	report := ExecutionReport{
		UnitID:    unit.ID,
		StartedAt: time.Now(),
	}

	timer := time.NewTimer(unit.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		report.FinishedAt = time.Now()
		report.Outcome = OutcomeSuccess
		return report, nil
	case <-ctx.Done():
		report.FinishedAt = time.Now()
		report.Outcome = OutcomeFailure
		return report, ErrRegistry.NewWithCause(CodeCancelled, ctx.Err()).
			WithDetail("unit_id", unit.ID)
	}
}
