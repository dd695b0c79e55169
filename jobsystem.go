package jobsystem

import "github.com/vgjs-go/jobsystem/core"

// Future is the caller-facing handle to a resumable job that produces a
// typed result.
type Future[T any] = core.Future[T]

// Re-exported types so callers importing this root package never need to
// import core directly, following the teacher's re-export convention.
type (
	Job      = core.Job
	Kind     = core.Kind
	Priority = core.Priority
	Func     = core.Func
	Body     = core.Body
	Yield    = core.Yield

	Scheduler = core.Scheduler
	Option    = core.Option
	Config    = core.Config

	Logger       = core.Logger
	Field        = core.Field
	Metrics      = core.Metrics
	Clock        = core.Clock
	PanicHandler = core.PanicHandler
)

const (
	KindLeaf      = core.KindLeaf
	KindResumable = core.KindResumable

	PriorityLow    = core.PriorityLow
	PriorityNormal = core.PriorityNormal
	PriorityHigh   = core.PriorityHigh
)

var (
	// Instance returns (constructing and starting on first call) the
	// process-wide Scheduler singleton.
	Instance = core.Instance
	// InstanceCreated reports whether the singleton scheduler has been
	// constructed yet.
	InstanceCreated = core.InstanceCreated
	// Current returns the job executing on the calling goroutine, via the
	// process singleton.
	Current = core.Current
	// ThreadIndex returns the worker index executing on the calling
	// goroutine, via the process singleton.
	ThreadIndex = core.ThreadIndex

	NewLeafJob      = core.NewLeafJob
	NewResumableJob = core.NewResumableJob
	Go              = core.Go

	WithWorkers      = core.WithWorkers
	WithStartIndex   = core.WithStartIndex
	WithLogger       = core.WithLogger
	WithMetrics      = core.WithMetrics
	WithClock        = core.WithClock
	WithPanicHandler = core.WithPanicHandler
	WithIdleBackoff  = core.WithIdleBackoff

	NewDefaultLogger = core.NewDefaultLogger
	NewNoOpLogger    = core.NewNoOpLogger
	F                = core.F

	TimerJob = core.TimerJob
)

// NewFuture builds a resumable job from body and wraps it in a Future that
// captures whatever body returns.
func NewFuture[T any](body func(y *Yield) T) *Future[T] {
	return core.NewFuture[T](body)
}
