package core

import "sync/atomic"

// Kind distinguishes a plain one-shot job from a resumable coroutine job.
type Kind uint8

const (
	// KindLeaf is a plain function that runs to completion in one call.
	KindLeaf Kind = iota
	// KindResumable is a job backed by a suspendable promise frame.
	KindResumable
)

// Priority is an optional scheduling hint consulted only when the shared
// queue has more than one ready job to choose from: High is popped before
// Normal, and Normal before Low. It never overrides affinity routing. There
// is no aging, so a lower-priority job waits for as long as higher-priority
// jobs keep arriving.
type Priority int8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

var nextJobID atomic.Uint64

// Func is the body of a plain leaf job.
type Func func()

// Job is the scheduling unit. It is either a leaf job wrapping a Func, or a
// resumable job backed by a frame (see promise.go). Fan-out/fan-in is
// tracked with a self-inclusive children counter: every Job starts counting
// itself as its own first child, and is considered finished only once that
// counter has been driven to zero by one decrement per scheduled child plus
// one decrement for the job's own body completing.
type Job struct {
	next atomic.Pointer[Job] // intrusive queue linkage, see queue.go

	children atomic.Int32 // self (1) + one per scheduled child
	parent   *Job
	continuation *Job

	kind Kind
	id   uint64

	priority Priority
	affinity int32 // -1 means "no affinity"

	fn    Func
	frame *frame // non-nil only for KindResumable

	queuedAt int64 // unix nanos of the latest schedule; not read by the queues

	scheduler *Scheduler // the scheduler this job was last scheduled on
	awaitedBy *awaitGroup // set if some frame is suspended waiting on this job

	everScheduled atomic.Bool // set by Schedule/scheduleChild, never by internal reschedules
}

// NewLeafJob builds a one-shot leaf job.
func NewLeafJob(fn Func) *Job {
	if fn == nil {
		panic(ErrNilJob)
	}
	j := &Job{
		kind:     KindLeaf,
		id:       nextJobID.Add(1),
		affinity: -1,
		fn:       fn,
	}
	j.children.Store(1)
	return j
}

// newResumableJob builds a resumable job around an already-constructed frame.
func newResumableJob(fr *frame) *Job {
	j := &Job{
		kind:     KindResumable,
		id:       nextJobID.Add(1),
		affinity: -1,
		frame:    fr,
	}
	j.children.Store(1)
	fr.job = j
	return j
}

// ID returns the job's opaque, monotonically increasing identifier. It exists
// purely for log correlation and metric labels and is never consulted by the
// scheduler.
func (j *Job) ID() uint64 { return j.id }

// Priority returns the job's scheduling hint.
func (j *Job) Priority() Priority { return j.priority }

// WithPriority sets the scheduling hint and returns the job for chaining.
func (j *Job) WithPriority(p Priority) *Job {
	j.priority = p
	return j
}

// Affinity returns the worker index this job is pinned to, or -1 if none.
func (j *Job) Affinity() int32 { return j.affinity }

// WithAffinity pins the job to a specific worker index and returns the job
// for chaining.
func (j *Job) WithAffinity(workerIndex int) *Job {
	j.affinity = int32(workerIndex)
	return j
}

// addChild increments the job's outstanding-children counter. Must be called
// before the child is handed to the scheduler, never after.
func (j *Job) addChild() {
	j.children.Add(1)
}

// resume executes one slice of the job's body. For a leaf job this runs the
// function to completion; for a resumable job this resumes the frame up to
// its next suspension point or completion. workerIdx identifies the worker
// driving this resume, used only to keep CurrentJob/ThreadIndex accurate
// inside a resumable job's body. It returns true if the job's own body has
// finished (as opposed to merely suspended).
func (j *Job) resume(workerIdx int) bool {
	switch j.kind {
	case KindLeaf:
		j.fn()
		return true
	case KindResumable:
		return j.frame.resume(workerIdx)
	default:
		panic("core: unknown job kind")
	}
}
