package core

import "sync/atomic"

// futureParties is the number of independent owners a resumable job's frame
// has: the scheduler, which drives it to completion, and the Future handle,
// which the caller holds. The frame's closure is only released once both
// have let go.
const futureParties = 2

// Future is the caller-facing handle to a resumable job that produces a
// typed result. It realizes the spec's two-party outstanding refcount: the
// scheduler side releases automatically the instant the job's body
// returns, and the caller releases explicitly via Close. Whichever release
// happens second drops the frame's captured closure so it, and whatever it
// closed over, become collectible — this is a deliberately simpler
// realization of the same guarantee the original system's Coro<T>
// destructor worked out through parent-type-dependent logic.
type Future[T any] struct {
	job         *Job
	result      T
	outstanding atomic.Int32
}

// NewFuture builds a resumable job from body and wraps it in a Future that
// captures whatever body returns.
func NewFuture[T any](body func(y *Yield) T) *Future[T] {
	f := &Future[T]{}
	f.outstanding.Store(futureParties)
	f.job = NewResumableJob(func(y *Yield) {
		f.result = body(y)
		f.release()
	})
	return f
}

// Job returns the underlying resumable job, for passing to Yield.Await,
// Yield.AwaitAll, Yield.AwaitTuple, or Scheduler.Schedule directly.
func (f *Future[T]) Job() *Job { return f.job }

// Configure sets the job's worker affinity and priority hint before it is
// scheduled, mirroring the original future handle's
// operator()(thread_index, type, id) configuration call. IDs are assigned
// once at construction and are never reassigned, so Configure has no id
// parameter.
func (f *Future[T]) Configure(affinity int, priority Priority) *Future[T] {
	f.job.affinity = int32(affinity)
	f.job.priority = priority
	return f
}

// Get returns the job's result. Callers must only call Get once the job is
// known to have completed, typically right after awaiting it — the same
// precondition the original Coro<T>::get() carries.
func (f *Future[T]) Get() T { return f.result }

// Close releases the caller-side reference to the frame.
func (f *Future[T]) Close() { f.release() }

func (f *Future[T]) release() {
	if f.outstanding.Add(-1) == 0 {
		f.job.frame.body = nil
	}
}
