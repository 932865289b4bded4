package fanout_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/fanout"
)

// fakeFetcher settles targets from a canned table and counts invocations.
type fakeFetcher struct {
	delays map[string]time.Duration
	errs   map[string]error
	calls  atomic.Int64
}

func (f *fakeFetcher) Fetch(ctx context.Context, target string) (json.RawMessage, error) {
	f.calls.Add(1)

	if d, ok := f.delays[target]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[target]; ok {
		return nil, err
	}
	return json.RawMessage(fmt.Sprintf(`{"source":%q}`, target)), nil
}

func calls(targets ...string) []fanout.Call {
	out := make([]fanout.Call, len(targets))
	for i, t := range targets {
		out[i] = fanout.Call{Target: t}
	}
	return out
}

func TestGather_OneResultPerCallInInputOrder(t *testing.T) {
	f := &fakeFetcher{delays: map[string]time.Duration{
		"a": 60 * time.Millisecond, // slowest first: completion order inverts input order
		"b": 30 * time.Millisecond,
		"c": 0,
	}}
	agg := fanout.NewAggregator(f)

	results := agg.Gather(context.Background(), calls("a", "b", "c"))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, target := range []string{"a", "b", "c"} {
		if results[i].Target != target {
			t.Fatalf("slot %d: expected %s, got %s", i, target, results[i].Target)
		}
		if !results[i].OK() {
			t.Fatalf("slot %d: unexpected error %v", i, results[i].Err)
		}
	}
}

func TestGather_CallsRunConcurrently(t *testing.T) {
	f := &fakeFetcher{delays: map[string]time.Duration{
		"a": 70 * time.Millisecond,
		"b": 70 * time.Millisecond,
		"c": 70 * time.Millisecond,
	}}
	agg := fanout.NewAggregator(f)

	start := time.Now()
	agg.Gather(context.Background(), calls("a", "b", "c"))
	if elapsed := time.Since(start); elapsed > 160*time.Millisecond {
		t.Fatalf("expected overlapping calls (~70ms), took %v", elapsed)
	}
}

func TestGather_TimeoutIsolatedToItsSlot(t *testing.T) {
	f := &fakeFetcher{delays: map[string]time.Duration{
		"slow": time.Second,
	}}
	agg := fanout.NewAggregator(f, fanout.WithDefaultTimeout(50*time.Millisecond))

	results := agg.Gather(context.Background(), calls("fast1", "slow", "fast2"))

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("siblings must be unaffected: %v / %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatal("slow call should have timed out")
	}
	var e *errx.Error
	if !errors.As(results[1].Err, &e) || e.Code != "FANOUT_CALL_TIMEOUT" {
		t.Fatalf("expected FANOUT_CALL_TIMEOUT, got %v", results[1].Err)
	}
}

func TestGather_PerCallTimeoutOverridesDefault(t *testing.T) {
	f := &fakeFetcher{delays: map[string]time.Duration{"slow": 80 * time.Millisecond}}
	agg := fanout.NewAggregator(f, fanout.WithDefaultTimeout(time.Second))

	results := agg.Gather(context.Background(), []fanout.Call{
		{Target: "slow", Timeout: 20 * time.Millisecond},
	})
	if results[0].Err == nil {
		t.Fatal("per-call timeout should have fired")
	}
}

func TestGather_TransportFailureIsData(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{
		"broken": errors.New("connection refused"),
	}}
	agg := fanout.NewAggregator(f)

	results := agg.Gather(context.Background(), calls("ok", "broken"))

	if !results[0].OK() {
		t.Fatalf("healthy call affected: %v", results[0].Err)
	}
	if results[1].OK() {
		t.Fatal("broken call should carry its error")
	}
	if !errx.IsType(results[1].Err, errx.TypeExternal) {
		t.Fatalf("expected EXTERNAL error, got %v", results[1].Err)
	}
}

func TestGather_RecordsLatency(t *testing.T) {
	f := &fakeFetcher{delays: map[string]time.Duration{"a": 40 * time.Millisecond}}
	agg := fanout.NewAggregator(f)

	results := agg.Gather(context.Background(), calls("a"))
	if results[0].Latency < 40*time.Millisecond {
		t.Fatalf("latency %v shorter than the call took", results[0].Latency)
	}
}

func TestGather_BoundedConcurrencyKeepsContract(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"bad": errors.New("boom")}}
	agg := fanout.NewAggregator(f, fanout.WithMaxConcurrent(2))

	targets := []string{"t0", "t1", "bad", "t3", "t4", "t5"}
	results := agg.Gather(context.Background(), calls(targets...))

	if len(results) != len(targets) {
		t.Fatalf("expected %d results, got %d", len(targets), len(results))
	}
	for i, target := range targets {
		if results[i].Target != target {
			t.Fatalf("slot %d: expected %s, got %s", i, target, results[i].Target)
		}
		if target == "bad" {
			if results[i].OK() {
				t.Fatal("bad target should carry its error")
			}
		} else if !results[i].OK() {
			t.Fatalf("slot %d unexpectedly failed: %v", i, results[i].Err)
		}
	}
	if got := f.calls.Load(); got != int64(len(targets)) {
		t.Fatalf("expected %d fetches, got %d", len(targets), got)
	}
}

func TestGather_EmptyCallSet(t *testing.T) {
	agg := fanout.NewAggregator(&fakeFetcher{})
	results := agg.Gather(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected empty result set, got %d", len(results))
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	ok := fanout.Result{Target: "a", Payload: json.RawMessage(`{"x":1}`), Latency: 12 * time.Millisecond}
	failed := fanout.Result{Target: "b", Err: errors.New("refused"), Latency: 3 * time.Millisecond}

	data, err := json.Marshal([]fanout.Result{ok, failed})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if decoded[0]["ok"] != true || decoded[1]["ok"] != false {
		t.Fatalf("ok flags wrong: %v", decoded)
	}
	if decoded[1]["error"] != "refused" {
		t.Fatalf("error should travel as data: %v", decoded[1])
	}
}
