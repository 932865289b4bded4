// Package simwork models simulated I/O-bound work units and dispatches them
// either concurrently or sequentially, measuring wall-clock behaviour.
//
// The package exists to make the contrast between the two modes observable:
// concurrent dispatch overlaps the units' suspension points so the total wall
// time approaches the longest single unit, while sequential dispatch chains
// them so the total approaches the sum. The sequential path occupies its
// calling goroutine for the full duration; it demonstrates the blocking
// anti-pattern. Unrelated requests are unaffected either way, since
// every request runs on its own goroutine.
package simwork

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
)

// Mode selects how a set of work units is dispatched.
type Mode string

const (
	// ModeConcurrent starts every unit together; suspensions overlap.
	ModeConcurrent Mode = "concurrent"
	// ModeSequential starts unit i+1 only after unit i finished.
	ModeSequential Mode = "sequential"
)

// ParseMode parses a raw mode string.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeConcurrent:
		return ModeConcurrent, nil
	case ModeSequential:
		return ModeSequential, nil
	default:
		return "", ErrRegistry.New(CodeInvalidMode).WithDetail("mode", raw)
	}
}

// Outcome is the terminal state of a single executed unit.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// WorkUnit is one simulated I/O wait. Immutable once created.
type WorkUnit struct {
	ID       string        `json:"id"`
	Duration time.Duration `json:"duration_ns"`
}

// ExecutionReport describes one executed unit.
type ExecutionReport struct {
	UnitID     string    `json:"unit_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    Outcome   `json:"outcome"`
}

// Elapsed returns the unit's observed wall time.
func (r ExecutionReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// DispatchReport aggregates a full dispatch run.
// Units preserve input order regardless of completion order.
type DispatchReport struct {
	Mode          Mode              `json:"mode"`
	TotalWallTime time.Duration     `json:"total_wall_time_ns"`
	Units         []ExecutionReport `json:"units"`
}

// ErrRegistry holds the package's error codes.
var ErrRegistry = errx.NewRegistry("SIMWORK")

var (
	CodeNegativeDuration = ErrRegistry.Register("NEGATIVE_DURATION", errx.TypeValidation, http.StatusBadRequest, "Work unit duration must not be negative")
	CodeInvalidMode      = ErrRegistry.Register("INVALID_MODE", errx.TypeValidation, http.StatusBadRequest, "Dispatch mode must be 'concurrent' or 'sequential'")
	CodeCancelled        = ErrRegistry.Register("CANCELLED", errx.TypeInternal, http.StatusInternalServerError, "Dispatch cancelled before completion")
)

// ErrNegativeDuration builds the validation error for a bad unit.
func ErrNegativeDuration() *errx.Error {
	return ErrRegistry.New(CodeNegativeDuration)
}
