package simwork

import (
	"context"
	"time"

	"github.com/Abraxas-365/concourse/pkg/asyncx"
	"github.com/Abraxas-365/concourse/pkg/logx"
)

// Dispatcher runs a set of work units in the requested mode and reports
// per-unit and aggregate timing.
type Dispatcher struct {
	sim *Simulator
}

// NewDispatcher creates a Dispatcher around the given simulator.
func NewDispatcher(sim *Simulator) *Dispatcher {
	return &Dispatcher{sim: sim}
}

// Run executes every unit in the given mode.
//
// Input is validated in full before any unit starts: a single negative
// duration rejects the whole batch with no work performed. Per-unit reports
// are returned in input order in both modes.
func (d *Dispatcher) Run(ctx context.Context, units []WorkUnit, mode Mode) (*DispatchReport, error) {
	if mode != ModeConcurrent && mode != ModeSequential {
		return nil, ErrRegistry.New(CodeInvalidMode).WithDetail("mode", string(mode))
	}
	for _, unit := range units {
		if unit.Duration < 0 {
			return nil, ErrNegativeDuration().
				WithDetail("unit_id", unit.ID).
				WithDetail("duration", unit.Duration.String())
		}
	}

	start := time.Now()

	var (
		reports []ExecutionReport
		err     error
	)
	switch mode {
	case ModeConcurrent:
		// All units start together; asyncx.Map correlates results by
		// input index, so report order survives any completion order.
		reports, err = asyncx.Map(ctx, units, d.sim.Simulate)
	case ModeSequential:
		reports, err = d.runSequential(ctx, units)
	}
	if err != nil {
		return nil, err
	}

	report := &DispatchReport{
		Mode:          mode,
		TotalWallTime: time.Since(start),
		Units:         reports,
	}

	logx.WithFields(logx.Fields{
		"mode":       mode,
		"units":      len(units),
		"total_wall": report.TotalWallTime.String(),
	}).Debug("simwork: dispatch finished")

	return report, nil
}

func (d *Dispatcher) runSequential(ctx context.Context, units []WorkUnit) ([]ExecutionReport, error) {
	reports := make([]ExecutionReport, 0, len(units))
	for _, unit := range units {
		report, err := d.sim.Simulate(ctx, unit)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
