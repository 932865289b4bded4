package config

import "time"

// TaskxConfig configures the deferred task runner.
type TaskxConfig struct {
	Concurrency     int
	QueueSize       int
	ShutdownTimeout time.Duration
}

func loadTaskxConfig() TaskxConfig {
	return TaskxConfig{
		Concurrency:     getEnvInt("TASKX_CONCURRENCY", 4),
		QueueSize:       getEnvInt("TASKX_QUEUE_SIZE", 256),
		ShutdownTimeout: getEnvDuration("TASKX_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}
