package taskx

import "time"

// RunnerOptions configures the task runner.
type RunnerOptions struct {
	Concurrency     int
	QueueSize       int
	ShutdownTimeout time.Duration
}

func defaultRunnerOptions() RunnerOptions {
	return RunnerOptions{
		Concurrency:     4,
		QueueSize:       256,
		ShutdownTimeout: 30 * time.Second,
	}
}

// RunnerOption is a functional option for configuring the runner.
type RunnerOption func(*RunnerOptions)

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) RunnerOption {
	return func(o *RunnerOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithQueueSize sets the submission buffer; submits beyond it are rejected.
func WithQueueSize(n int) RunnerOption {
	return func(o *RunnerOptions) {
		if n > 0 {
			o.QueueSize = n
		}
	}
}

// WithShutdownTimeout sets the maximum time to wait for workers to finish on shutdown.
func WithShutdownTimeout(d time.Duration) RunnerOption {
	return func(o *RunnerOptions) {
		o.ShutdownTimeout = d
	}
}
