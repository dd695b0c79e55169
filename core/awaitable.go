package core

import "sync/atomic"

// awaitGroup is the local countdown behind an await: it is not the same
// counter as Job.children (which tracks structured fan-out/fan-in for the
// completion protocol in completion.go), because a coroutine suspended
// waiting on some of its children has not itself finished — its own
// self-slot in Job.children is still outstanding. awaitGroup exists purely
// to know when to push the waiting frame's job back onto the scheduler.
type awaitGroup struct {
	remaining atomic.Int32
	owner     *Job
}

// Yield is the handle a resumable job's Body uses to suspend itself. It is
// only valid for the duration of that one Body call; a Body must not retain
// a Yield past its own return.
type Yield struct {
	fr *frame
}

// Await suspends the current job until child — and everything child
// transitively schedules as its own children — has fully completed. This is
// the single-child awaitable.
func (y *Yield) Await(child *Job) {
	if child == nil {
		panic(ErrNilJob)
	}
	y.AwaitAll([]*Job{child})
}

// AwaitAll suspends until every job in children has fully completed. This is
// the "container of children" awaitable; an empty container elides
// suspension entirely, since there is nothing left to wait for.
func (y *Yield) AwaitAll(children []*Job) {
	if len(children) == 0 {
		return
	}
	s := y.fr.job.scheduler
	group := &awaitGroup{owner: y.fr.job}
	group.remaining.Store(int32(len(children)))
	for _, c := range children {
		if c == nil {
			panic(ErrNilJob)
		}
		if c.scheduler != nil && c.scheduler != s {
			panic(ErrForeignAwait)
		}
		c.awaitedBy = group
		s.scheduleChild(y.fr.job, c)
	}
	y.fr.park()
}

// AwaitTuple suspends until every job across every group has completed. This
// is the "tuple of containers" awaitable: readiness is the fold of every
// group individually being empty, so a mix of empty and non-empty groups is
// fine — only the non-empty ones contribute anything to wait for.
func (y *Yield) AwaitTuple(groups ...[]*Job) {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	if total == 0 {
		return
	}
	all := make([]*Job, 0, total)
	for _, g := range groups {
		all = append(all, g...)
	}
	y.AwaitAll(all)
}

// ChangeThread moves the current job to run on a different worker. If the
// requested worker already equals the one driving this resume, the
// suspension is elided entirely — the same short-circuit the original
// system's thread-change awaitable applies when its target already matches
// the current thread index.
func (y *Yield) ChangeThread(workerIndex int) {
	s := y.fr.job.scheduler
	if s.ThreadIndex() == workerIndex {
		return
	}
	if workerIndex < 0 || workerIndex >= s.WorkerCount() {
		panic(ErrAffinityOutOfRange)
	}
	y.fr.job.affinity = int32(workerIndex)
	s.schedule(y.fr.job)
	y.fr.park()
}
