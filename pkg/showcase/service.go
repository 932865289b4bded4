// Package showcase wires the concurrency demos behind one service: timed
// dispatch of simulated work, failure-isolated fan-out to external APIs, the
// combined record-plus-external-data path, and fire-and-forget background
// processing.
package showcase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/concourse/pkg/fanout"
	"github.com/Abraxas-365/concourse/pkg/logx"
	"github.com/Abraxas-365/concourse/pkg/simwork"
	"github.com/Abraxas-365/concourse/pkg/taskx"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/Abraxas-365/concourse/pkg/user/usersrv"
)

// TaskTypeProcessData is the deferred task kind submitted by the demo.
const TaskTypeProcessData = "process-data"

// Options fixes the demo's external call set and benchmark shape.
type Options struct {
	// Targets are the URLs hit by the fan-out endpoints.
	Targets []string

	// CallTimeout applies to each fan-out call independently.
	CallTimeout time.Duration

	// ProbeUnitCount and ProbeUnitDuration define the fixed benchmark set
	// used by the performance endpoint.
	ProbeUnitCount    int
	ProbeUnitDuration time.Duration
}

// UserWithExternalData is the merged payload of the combined path.
type UserWithExternalData struct {
	User     *user.User      `json:"user"`
	External []fanout.Result `json:"external_data"`
}

// ShowcaseService composes the demo use cases.
type ShowcaseService struct {
	dispatcher *simwork.Dispatcher
	aggregator *fanout.Aggregator
	users      *usersrv.UserService
	runner     *taskx.Runner
	opts       Options
}

// NewShowcaseService creates the service and registers its task handlers on
// the runner.
func NewShowcaseService(
	dispatcher *simwork.Dispatcher,
	aggregator *fanout.Aggregator,
	users *usersrv.UserService,
	runner *taskx.Runner,
	opts Options,
) *ShowcaseService {
	if opts.ProbeUnitCount <= 0 {
		opts.ProbeUnitCount = 3
	}
	if opts.ProbeUnitDuration <= 0 {
		opts.ProbeUnitDuration = time.Second
	}

	s := &ShowcaseService{
		dispatcher: dispatcher,
		aggregator: aggregator,
		users:      users,
		runner:     runner,
		opts:       opts,
	}
	runner.Register(TaskTypeProcessData, processDataTask)
	return s
}

// Delay runs a single simulated wait in the given mode and reports on it.
func (s *ShowcaseService) Delay(ctx context.Context, d time.Duration, mode simwork.Mode) (*simwork.DispatchReport, error) {
	units := []simwork.WorkUnit{{ID: "delay", Duration: d}}
	return s.dispatcher.Run(ctx, units, mode)
}

// FetchExternal fans out over the configured targets.
func (s *ShowcaseService) FetchExternal(ctx context.Context) []fanout.Result {
	return s.aggregator.Gather(ctx, s.calls())
}

// FetchWithUser resolves the record first, then fans out. The ordering is
// deliberate: the external calls are parameterized by the record, so a
// missing record short-circuits with NotFound and zero calls issued.
func (s *ShowcaseService) FetchWithUser(ctx context.Context, email string) (*UserWithExternalData, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return &UserWithExternalData{
		User:     u,
		External: s.aggregator.Gather(ctx, s.calls()),
	}, nil
}

// SubmitBackground defers processing of message and acknowledges at once.
func (s *ShowcaseService) SubmitBackground(ctx context.Context, message string) (taskx.Ack, error) {
	payload, err := json.Marshal(processDataPayload{Message: message})
	if err != nil {
		return taskx.Ack{}, err
	}
	return s.runner.Submit(ctx, taskx.Task{Type: TaskTypeProcessData, Payload: payload})
}

// BackgroundStats exposes the runner counters.
func (s *ShowcaseService) BackgroundStats() taskx.Stats {
	return s.runner.Stats()
}

// Probe dispatches the fixed benchmark set in the given mode and returns the
// timing report.
func (s *ShowcaseService) Probe(ctx context.Context, mode simwork.Mode) (*simwork.DispatchReport, error) {
	units := make([]simwork.WorkUnit, s.opts.ProbeUnitCount)
	for i := range units {
		units[i] = simwork.WorkUnit{
			ID:       fmt.Sprintf("probe-%d", i),
			Duration: s.opts.ProbeUnitDuration,
		}
	}
	return s.dispatcher.Run(ctx, units, mode)
}

func (s *ShowcaseService) calls() []fanout.Call {
	calls := make([]fanout.Call, len(s.opts.Targets))
	for i, target := range s.opts.Targets {
		calls[i] = fanout.Call{Target: target, Timeout: s.opts.CallTimeout}
	}
	return calls
}

// ---------------------------------------------------------------------------
// Deferred task body
// ---------------------------------------------------------------------------

type processDataPayload struct {
	Message string `json:"message"`
}

const processIterations = 10_000_000

// processDataTask simulates CPU-heavy processing of the submitted message.
// It runs entirely outside the request that submitted it.
func processDataTask(ctx context.Context, task *taskx.TaskInfo) error {
	var payload processDataPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return err
	}

	var sum uint64
	for i := uint64(0); i < processIterations; i++ {
		sum += i * i
	}

	logx.WithFields(logx.Fields{
		"task_id": task.ID,
		"message": payload.Message,
		"result":  sum,
	}).Info("showcase: background processing finished")
	return nil
}
