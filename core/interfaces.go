package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: called when a job panics during execution
// =============================================================================

// PanicHandler is invoked when a job's body panics. Implementations must be
// safe for concurrent use; they may be called from any worker goroutine.
//
// A PanicHandler observes the crash, it does not prevent it: per the error
// handling design, an uncaught panic inside a job always terminates the
// process once the handler returns, the same way an uncaught C++ exception
// would have.
type PanicHandler interface {
	HandlePanic(workerIndex int, jobID uint64, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs the panic through the configured Logger, then lets
// the caller re-raise it.
type DefaultPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic.
func (h *DefaultPanicHandler) HandlePanic(workerIndex int, jobID uint64, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewNoOpLogger()
	}
	logger.Error("job panicked",
		F("worker", workerIndex),
		F("job_id", jobID),
		F("panic", fmt.Sprintf("%v", panicInfo)),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: observability collaborator
// =============================================================================

// Metrics collects scheduler-wide observability data. Every method must be
// cheap and non-blocking; implementations should tolerate a nil receiver.
type Metrics interface {
	// ObserveJobDuration records how long a job's single resume/run slice took.
	ObserveJobDuration(workerIndex int, kind Kind, d time.Duration)
	// IncJobPanic records a job panic.
	IncJobPanic(workerIndex int)
	// SetQueueDepth records the current depth of a worker's local queue, or
	// of the shared queue when workerIndex is -1.
	SetQueueDepth(workerIndex int, depth int)
	// IncJobsScheduled records a job being pushed onto a queue.
	IncJobsScheduled(workerIndex int)
	// IncJobsCompleted records a job's children counter reaching zero.
	IncJobsCompleted(workerIndex int)
}

// NilMetrics is a no-op Metrics implementation, the default when none is
// configured.
type NilMetrics struct{}

func (NilMetrics) ObserveJobDuration(int, Kind, time.Duration) {}
func (NilMetrics) IncJobPanic(int)                             {}
func (NilMetrics) SetQueueDepth(int, int)                      {}
func (NilMetrics) IncJobsScheduled(int)                        {}
func (NilMetrics) IncJobsCompleted(int)                        {}
