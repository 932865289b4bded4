package taskx

import (
	"net/http"

	"github.com/Abraxas-365/concourse/pkg/errx"
)

var taskxErrors = errx.NewRegistry("TASKX")

var (
	ErrQueueFull      = taskxErrors.Register("QUEUE_FULL", errx.TypeConflict, http.StatusTooManyRequests, "Task queue is full")
	ErrNoHandler      = taskxErrors.Register("NO_HANDLER", errx.TypeValidation, http.StatusBadRequest, "No handler registered for task type")
	ErrAlreadyRunning = taskxErrors.Register("ALREADY_RUNNING", errx.TypeConflict, http.StatusConflict, "Runner is already running")
)
