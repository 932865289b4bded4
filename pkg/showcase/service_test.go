package showcase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/fanout"
	"github.com/Abraxas-365/concourse/pkg/showcase"
	"github.com/Abraxas-365/concourse/pkg/simwork"
	"github.com/Abraxas-365/concourse/pkg/taskx"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/Abraxas-365/concourse/pkg/user/userinfra"
	"github.com/Abraxas-365/concourse/pkg/user/usersrv"
)

// countingFetcher records how many outbound calls were actually issued.
type countingFetcher struct {
	calls atomic.Int64
}

func (f *countingFetcher) Fetch(ctx context.Context, target string) (json.RawMessage, error) {
	f.calls.Add(1)
	return json.RawMessage(fmt.Sprintf(`{"source":%q}`, target)), nil
}

type fixture struct {
	svc     *showcase.ShowcaseService
	fetcher *countingFetcher
	users   *usersrv.UserService
	runner  *taskx.Runner
}

func newFixture(t *testing.T, opts showcase.Options) *fixture {
	t.Helper()

	fetcher := &countingFetcher{}
	users := usersrv.NewUserService(userinfra.NewMemoryUserRepository())
	runner := taskx.NewRunner(taskx.WithConcurrency(2))

	if opts.Targets == nil {
		opts.Targets = []string{"https://api.example.com/a", "https://api.example.com/b"}
	}

	svc := showcase.NewShowcaseService(
		simwork.NewDispatcher(simwork.NewSimulator()),
		fanout.NewAggregator(fetcher),
		users,
		runner,
		opts,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go runner.Start(ctx)
	t.Cleanup(cancel)
	time.Sleep(10 * time.Millisecond)

	return &fixture{svc: svc, fetcher: fetcher, users: users, runner: runner}
}

func TestFetchWithUser_MissingRecordShortCircuits(t *testing.T) {
	fx := newFixture(t, showcase.Options{})

	_, err := fx.svc.FetchWithUser(context.Background(), "ghost@example.com")
	if !errx.IsType(err, errx.TypeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if got := fx.fetcher.calls.Load(); got != 0 {
		t.Fatalf("no fan-out calls may be issued on a miss, got %d", got)
	}
}

func TestFetchWithUser_ResolvesRecordThenFansOut(t *testing.T) {
	fx := newFixture(t, showcase.Options{})
	ctx := context.Background()

	created, err := fx.users.Create(ctx, user.CreateUserRequest{Email: "carla@example.com", FullName: "Carla"})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	data, err := fx.svc.FetchWithUser(ctx, "carla@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.User == nil || data.User.ID != created.ID {
		t.Fatalf("wrong record: %+v", data.User)
	}
	if len(data.External) != 2 {
		t.Fatalf("expected 2 external results, got %d", len(data.External))
	}
	if data.External[0].Target != "https://api.example.com/a" {
		t.Fatalf("result order must match target order, got %s", data.External[0].Target)
	}
	if got := fx.fetcher.calls.Load(); got != 2 {
		t.Fatalf("expected 2 fetches, got %d", got)
	}
}

func TestFetchExternal_OneResultPerTarget(t *testing.T) {
	fx := newFixture(t, showcase.Options{})

	results := fx.svc.FetchExternal(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.OK() {
			t.Fatalf("unexpected failure: %v", r.Err)
		}
	}
}

func TestSubmitBackground_AcksImmediatelyAndEventuallyRuns(t *testing.T) {
	fx := newFixture(t, showcase.Options{})

	start := time.Now()
	ack, err := fx.svc.SubmitBackground(context.Background(), "crunch this")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("ack took %v; must not wait for the task body", elapsed)
	}
	if ack.TaskID == "" {
		t.Fatal("ack carries no task id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fx.svc.BackgroundStats().Completed == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task never completed: %+v", fx.svc.BackgroundStats())
}

func TestProbe_ConcurrentVsSequentialTiming(t *testing.T) {
	fx := newFixture(t, showcase.Options{
		ProbeUnitCount:    3,
		ProbeUnitDuration: 60 * time.Millisecond,
	})
	ctx := context.Background()

	concurrent, err := fx.svc.Probe(ctx, simwork.ModeConcurrent)
	if err != nil {
		t.Fatalf("concurrent probe failed: %v", err)
	}
	sequential, err := fx.svc.Probe(ctx, simwork.ModeSequential)
	if err != nil {
		t.Fatalf("sequential probe failed: %v", err)
	}

	if concurrent.TotalWallTime > 140*time.Millisecond {
		t.Fatalf("concurrent total %v should approximate one unit (60ms)", concurrent.TotalWallTime)
	}
	if sequential.TotalWallTime < 180*time.Millisecond {
		t.Fatalf("sequential total %v should approximate the sum (180ms)", sequential.TotalWallTime)
	}
	if len(concurrent.Units) != 3 || len(sequential.Units) != 3 {
		t.Fatal("probe must report every unit")
	}
}

func TestDelay_NegativeDurationRejected(t *testing.T) {
	fx := newFixture(t, showcase.Options{})

	_, err := fx.svc.Delay(context.Background(), -time.Second, simwork.ModeConcurrent)
	if !errx.IsType(err, errx.TypeValidation) {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}
