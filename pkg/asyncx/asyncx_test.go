package asyncx_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Abraxas-365/concourse/pkg/asyncx"
)

func TestAllSettled_PreservesInputOrder(t *testing.T) {
	ctx := context.Background()

	// The slowest function is first; results must still come back in
	// input order, not completion order.
	fns := make([]func(context.Context) (int, error), 5)
	for i := range fns {
		i := i
		delay := time.Duration(5-i) * 20 * time.Millisecond
		fns[i] = func(ctx context.Context) (int, error) {
			time.Sleep(delay)
			return i, nil
		}
	}

	results := asyncx.AllSettled(ctx, fns...)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.OK() || r.Value != i {
			t.Fatalf("slot %d: expected value %d, got %+v", i, i, r)
		}
	}
}

func TestAllSettled_DoesNotShortCircuit(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	results := asyncx.AllSettled(ctx,
		func(ctx context.Context) (string, error) { return "", boom },
		func(ctx context.Context) (string, error) { return "ok", nil },
	)

	if results[0].OK() {
		t.Fatal("expected first result to carry an error")
	}
	if !results[1].OK() || results[1].Value != "ok" {
		t.Fatalf("second result should be unaffected, got %+v", results[1])
	}
}

func TestAll_RunsConcurrently(t *testing.T) {
	ctx := context.Background()

	start := time.Now()
	_, err := asyncx.All(ctx,
		func(ctx context.Context) (int, error) { time.Sleep(50 * time.Millisecond); return 1, nil },
		func(ctx context.Context) (int, error) { time.Sleep(50 * time.Millisecond); return 2, nil },
		func(ctx context.Context) (int, error) { time.Sleep(50 * time.Millisecond); return 3, nil },
	)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed > 120*time.Millisecond {
		t.Fatalf("expected overlapping execution (~50ms), took %v", elapsed)
	}
}

func TestMap_OrderAndValues(t *testing.T) {
	ctx := context.Background()
	items := []int{1, 2, 3, 4}

	doubled, err := asyncx.Map(ctx, items, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range doubled {
		if v != items[i]*2 {
			t.Fatalf("slot %d: expected %d, got %d", i, items[i]*2, v)
		}
	}
}

func TestPool_BoundsConcurrencyAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	results := asyncx.Pool(ctx, 3, items, func(ctx context.Context, n int) (string, error) {
		if n == 7 {
			return "", errors.New("slot 7 fails")
		}
		return fmt.Sprintf("item-%d", n), nil
	})

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if i == 7 {
			if r.OK() {
				t.Fatal("slot 7 should carry its error")
			}
			continue
		}
		if !r.OK() || r.Value != fmt.Sprintf("item-%d", i) {
			t.Fatalf("slot %d: got %+v", i, r)
		}
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx := context.Background()

	_, err := asyncx.WithTimeout(ctx, 30*time.Millisecond, func(ctx context.Context) (int, error) {
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestFuture_AwaitCachesResult(t *testing.T) {
	calls := 0
	fut := asyncx.Run(func() (int, error) {
		calls++
		return 42, nil
	})

	for n := 0; n < 3; n++ {
		v, err := fut.Await()
		if err != nil || v != 42 {
			t.Fatalf("expected 42, got %d (%v)", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("function should run exactly once, ran %d times", calls)
	}
}
