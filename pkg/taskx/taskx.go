// Package taskx runs fire-and-forget deferred tasks outside the request
// critical path.
//
// A submitter gets an immediate Ack and never anything else: no completion
// signal, no result, no error. Failures inside a task are caught at the
// worker boundary and logged so they cannot disrupt unrelated work. Tasks
// carry no ordering guarantee, no priority and no cancellation once
// submitted; the queue is in-memory and best-effort.
package taskx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abraxas-365/concourse/pkg/logx"
	"github.com/google/uuid"
)

// HandlerFunc processes one task. Errors are recorded, never propagated.
type HandlerFunc func(ctx context.Context, task *TaskInfo) error

// Runner accepts tasks and executes them on a pool of worker goroutines.
type Runner struct {
	opts     RunnerOptions
	handlers map[string]HandlerFunc
	queue    chan *TaskInfo
	mu       sync.RWMutex
	running  bool

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// NewRunner creates a task runner.
func NewRunner(options ...RunnerOption) *Runner {
	opts := defaultRunnerOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Runner{
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
		queue:    make(chan *TaskInfo, opts.QueueSize),
	}
}

// Register adds a handler for a given task type.
func (r *Runner) Register(taskType string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[taskType] = handler
}

// Submit enqueues a task and returns immediately with an acknowledgement.
// It never waits for execution; a full queue rejects the task outright.
func (r *Runner) Submit(ctx context.Context, task Task) (Ack, error) {
	r.mu.RLock()
	_, ok := r.handlers[task.Type]
	r.mu.RUnlock()
	if !ok {
		return Ack{}, taskxErrors.New(ErrNoHandler).WithDetail("task_type", task.Type)
	}

	info := &TaskInfo{
		ID:          uuid.NewString(),
		Type:        task.Type,
		Payload:     task.Payload,
		SubmittedAt: time.Now().UTC(),
	}

	select {
	case r.queue <- info:
		r.submitted.Add(1)
		return Ack{TaskID: info.ID, SubmittedAt: info.SubmittedAt}, nil
	default:
		return Ack{}, taskxErrors.New(ErrQueueFull).WithDetail("queue_size", r.opts.QueueSize)
	}
}

// Stats returns the runner's aggregate counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Submitted: r.submitted.Load(),
		Completed: r.completed.Load(),
		Failed:    r.failed.Load(),
	}
}

// Start begins processing tasks. It blocks until ctx is cancelled, then
// drains in-flight work within the shutdown timeout.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return taskxErrors.New(ErrAlreadyRunning)
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	logx.Infof("taskx: starting %d workers (queue size %d)", r.opts.Concurrency, r.opts.QueueSize)

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.workerLoop(ctx, id)
		}(i)
	}

	<-ctx.Done()
	logx.Info("taskx: shutting down workers...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("taskx: all workers stopped")
	case <-time.After(r.opts.ShutdownTimeout):
		logx.Warn("taskx: shutdown timed out, some tasks may not have completed")
	}

	return nil
}

func (r *Runner) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-r.queue:
			r.process(id, task)
		}
	}
}

// process runs one task. The recover here is the hard isolation boundary:
// nothing a task does may escape into the worker loop.
func (r *Runner) process(workerID int, task *TaskInfo) {
	defer func() {
		if rec := recover(); rec != nil {
			r.failed.Add(1)
			logx.WithFields(logx.Fields{
				"task_id":   task.ID,
				"task_type": task.Type,
				"worker":    workerID,
			}).Errorf("taskx: task panicked: %v", rec)
		}
	}()

	r.mu.RLock()
	handler := r.handlers[task.Type]
	r.mu.RUnlock()

	// Task bodies own their lifetime once started; they are not tied to the
	// submitting request's context and cannot be cancelled.
	if err := handler(context.Background(), task); err != nil {
		r.failed.Add(1)
		logx.WithError(err).Warnf("taskx: task %s (type=%s) failed", task.ID, task.Type)
		return
	}

	r.completed.Add(1)
	logx.WithFields(logx.Fields{
		"task_id":   task.ID,
		"task_type": task.Type,
	}).Debug("taskx: task completed")
}
