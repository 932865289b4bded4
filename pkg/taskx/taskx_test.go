package taskx_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/taskx"
)

// startRunner boots a runner for the duration of the test.
func startRunner(t *testing.T, r *taskx.Runner) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go r.Start(ctx)
	t.Cleanup(cancel)
	// Give workers a moment to come up.
	time.Sleep(10 * time.Millisecond)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSubmit_ReturnsImmediately(t *testing.T) {
	r := taskx.NewRunner(taskx.WithConcurrency(2))
	r.Register("slow", func(ctx context.Context, task *taskx.TaskInfo) error {
		time.Sleep(2 * time.Second)
		return nil
	})
	startRunner(t, r)

	start := time.Now()
	ack, err := r.Submit(context.Background(), taskx.Task{Type: "slow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("submit must not wait for the task body, took %v", elapsed)
	}
	if ack.TaskID == "" || ack.SubmittedAt.IsZero() {
		t.Fatalf("incomplete ack: %+v", ack)
	}
}

func TestTask_EventuallyCompletes(t *testing.T) {
	r := taskx.NewRunner()
	done := make(chan string, 1)
	r.Register("echo", func(ctx context.Context, task *taskx.TaskInfo) error {
		var msg string
		if err := json.Unmarshal(task.Payload, &msg); err != nil {
			return err
		}
		done <- msg
		return nil
	})
	startRunner(t, r)

	payload, _ := json.Marshal("hello")
	if _, err := r.Submit(context.Background(), taskx.Task{Type: "echo", Payload: payload}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case msg := <-done:
		if msg != "hello" {
			t.Fatalf("payload mangled: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	waitFor(t, time.Second, func() bool { return r.Stats().Completed == 1 })
}

func TestTaskFailure_CountedNotPropagated(t *testing.T) {
	r := taskx.NewRunner(taskx.WithConcurrency(1))
	r.Register("fail", func(ctx context.Context, task *taskx.TaskInfo) error {
		return errors.New("task blew up")
	})
	r.Register("ok", func(ctx context.Context, task *taskx.TaskInfo) error {
		return nil
	})
	startRunner(t, r)

	ctx := context.Background()
	if _, err := r.Submit(ctx, taskx.Task{Type: "fail"}); err != nil {
		t.Fatalf("submit must succeed even for a failing body: %v", err)
	}
	if _, err := r.Submit(ctx, taskx.Task{Type: "ok"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// The failing task must not take the worker down with it.
	waitFor(t, time.Second, func() bool {
		s := r.Stats()
		return s.Failed == 1 && s.Completed == 1
	})
}

func TestTaskPanic_Contained(t *testing.T) {
	r := taskx.NewRunner(taskx.WithConcurrency(1))
	r.Register("panic", func(ctx context.Context, task *taskx.TaskInfo) error {
		panic("worker should survive this")
	})
	r.Register("after", func(ctx context.Context, task *taskx.TaskInfo) error {
		return nil
	})
	startRunner(t, r)

	ctx := context.Background()
	r.Submit(ctx, taskx.Task{Type: "panic"})
	r.Submit(ctx, taskx.Task{Type: "after"})

	waitFor(t, time.Second, func() bool {
		s := r.Stats()
		return s.Failed == 1 && s.Completed == 1
	})
}

func TestSubmit_UnknownTypeRejected(t *testing.T) {
	r := taskx.NewRunner()
	startRunner(t, r)

	_, err := r.Submit(context.Background(), taskx.Task{Type: "ghost"})
	if !errx.IsType(err, errx.TypeValidation) {
		t.Fatalf("expected VALIDATION error, got %v", err)
	}
}

func TestSubmit_FullQueueRejected(t *testing.T) {
	// No Start: nothing drains the queue.
	r := taskx.NewRunner(taskx.WithQueueSize(2))
	r.Register("noop", func(ctx context.Context, task *taskx.TaskInfo) error { return nil })

	ctx := context.Background()
	for n := 0; n < 2; n++ {
		if _, err := r.Submit(ctx, taskx.Task{Type: "noop"}); err != nil {
			t.Fatalf("queue should have room: %v", err)
		}
	}

	_, err := r.Submit(ctx, taskx.Task{Type: "noop"})
	if !errx.IsType(err, errx.TypeConflict) {
		t.Fatalf("expected CONFLICT on full queue, got %v", err)
	}
}

func TestStart_SecondStartRejected(t *testing.T) {
	r := taskx.NewRunner()
	startRunner(t, r)

	err := r.Start(context.Background())
	if !errx.IsType(err, errx.TypeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}
