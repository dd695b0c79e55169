// Package jobsystem is a single-process, cooperative job and coroutine
// scheduler for game-engine-style workloads: plain one-shot jobs and
// resumable coroutine jobs, with structured parent/child fan-out and
// fan-in, and optional per-worker affinity.
//
// # Quick Start
//
//	sched := jobsystem.Instance(jobsystem.WithWorkers(4))
//
//	sum := jobsystem.NewFuture(func(y *jobsystem.Yield) int {
//		total := 0
//		var mu sync.Mutex
//		children := make([]*jobsystem.Job, 10)
//		for i := range children {
//			i := i
//			children[i] = jobsystem.NewLeafJob(func() {
//				mu.Lock()
//				total += i
//				mu.Unlock()
//			})
//		}
//		y.AwaitAll(children)
//		return total
//	})
//	sched.Schedule(sum.Job())
//	// ... elsewhere, after awaiting or polling completion ...
//	result := sum.Get()
//
// # Key Concepts
//
//   - Job: the scheduling unit. Leaf jobs run a plain function to
//     completion; resumable jobs suspend on an awaitable and are resumed
//     later, possibly on a different worker.
//   - Scheduler: the worker pool and routing logic. A process normally uses
//     the singleton returned by Instance, but nothing prevents constructing
//     independent schedulers for isolated tests.
//   - Future[T]: the caller-facing handle to a resumable job that produces
//     a typed result.
//   - Yield: the handle a resumable job's body uses to suspend itself —
//     Await, AwaitAll, AwaitTuple, and ChangeThread are the four ways a job
//     can yield control back to the scheduler.
//
// # Thread Safety
//
// Job, Scheduler, and Future are all safe for concurrent use from any
// worker or caller goroutine. A job must never be scheduled more than
// once; doing so panics.
//
// # Non-goals
//
// No work-stealing, no preemption, no distributed operation, no
// persistence, and no cancellation of in-flight jobs. A panic inside a
// job's body is never swallowed: the process crashes, by design, the same
// way an uncaught exception would have in the system this one is modeled
// on.
package jobsystem
