package taskx

import (
	"encoding/json"
	"time"
)

// Task is a unit of deferred work to be submitted.
type Task struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TaskInfo is the runner's internal view of a submitted task.
type TaskInfo struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Ack is everything a submitter ever learns about a task: its ID and when it
// was accepted. There is no status, result or error channel: task execution
// is fire-and-forget and observable only through logs and the runner's
// aggregate Stats.
type Ack struct {
	TaskID      string    `json:"task_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Stats are the runner's aggregate counters. They identify no individual
// task; they exist so an operator can confirm deferred work eventually runs.
type Stats struct {
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}
