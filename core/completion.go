package core

// finishJobBody consumes a job's own self-slot in its children counter, the
// one decrement that corresponds to its body having actually returned
// (never to a mere suspension — see promise.go/awaitable.go, which never
// decrement this counter). If that drives the counter to zero, the job and
// every child it ever scheduled have all finished, and the completion
// protocol runs.
func (s *Scheduler) finishJobBody(job *Job) {
	if job.children.Add(-1) == 0 {
		s.onFinished(job)
	}
}

// onFinished runs the completion protocol for a job (and, as it cascades,
// for its ancestors) whose children counter has reached zero. It is written
// as a loop rather than as mutual recursion between "a job finished" and
// "tell its parent:" a deep job tree would otherwise grow the Go call stack
// one frame per level, which the original recursive formulation does not
// pay for in C++ only because tail calls happen to be optimized there.
func (s *Scheduler) onFinished(job *Job) {
	for job != nil {
		if job.awaitedBy != nil {
			group := job.awaitedBy
			job.awaitedBy = nil
			if group.remaining.Add(-1) == 0 {
				s.schedule(group.owner)
			}
		}

		s.cfg.Metrics.IncJobsCompleted(-1)

		continuation := job.continuation
		parent := job.parent

		if continuation != nil {
			if parent != nil {
				parent.addChild()
				continuation.parent = parent
			}
			s.schedule(continuation)
		}

		if parent == nil {
			return
		}
		if parent.children.Add(-1) == 0 {
			job = parent
			continue
		}
		return
	}
}
