package core

import "runtime/debug"

// frameState reports what a resumable job's frame did the last time it ran.
type frameState uint8

const (
	frameSuspended frameState = iota
	frameFinished
)

// frame is the suspendable execution context behind a resumable Job. Go has
// no public, importable coroutine-frame primitive — the runtime's own
// coro/coroswitch family is linkname-gated and unavailable to ordinary
// programs — so the frame is realized as a dedicated goroutine parked on an
// unbuffered channel pair: resume() sends on resumeCh to wake it, and it
// sends on yieldCh when it suspends or finishes. The channels being
// unbuffered is what gives strict alternation between "the frame is
// running" and "the frame is parked," the same three-state machine
// (initial/awaitable/final suspension) the spec's coroutine promise
// describes, just realized with a goroutine's own stack standing in for the
// heap-allocated coroutine frame.
type frame struct {
	job  *Job
	body func(y *Yield)

	resumeCh chan struct{}
	yieldCh  chan frameState

	started    bool
	pendingIdx int
}

// Body is the signature of a resumable job's function: it receives a *Yield
// handle used to await children, change worker affinity, or both.
type Body func(y *Yield)

// NewResumableJob builds a resumable coroutine job around body. The job does
// not start running until the scheduler first dispatches it.
func NewResumableJob(body Body) *Job {
	if body == nil {
		panic(ErrNilJob)
	}
	fr := &frame{
		body:     body,
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan frameState),
	}
	return newResumableJob(fr)
}

// Go is a convenience alias for NewResumableJob, matching the brevity of
// launching a goroutine.
func Go(body Body) *Job { return NewResumableJob(body) }

// resume drives the frame forward by one slice: either starting it for the
// first time or waking it from its last suspension point. workerIdx is the
// worker currently driving this resume, used to keep CurrentJob/ThreadIndex
// accurate for code running inside the coroutine body. It returns true once
// the body has returned (final suspension).
func (fr *frame) resume(workerIdx int) bool {
	fr.pendingIdx = workerIdx
	if !fr.started {
		fr.started = true
		go fr.run()
	} else {
		fr.resumeCh <- struct{}{}
	}
	return <-fr.yieldCh == frameFinished
}

func (fr *frame) run() {
	defer func() {
		if r := recover(); r != nil {
			if s := fr.job.scheduler; s != nil {
				s.cfg.Metrics.IncJobPanic(fr.pendingIdx)
				s.cfg.PanicHandler.HandlePanic(fr.pendingIdx, fr.job.id, r, debug.Stack())
			}
			panic(r)
		}
	}()
	fr.bind()
	y := &Yield{fr: fr}
	fr.body(y)
	fr.unbind()
	fr.yieldCh <- frameFinished
}

func (fr *frame) bind() {
	if s := fr.job.scheduler; s != nil {
		s.bindCurrent(fr.pendingIdx, fr.job)
	}
}

func (fr *frame) unbind() {
	if s := fr.job.scheduler; s != nil {
		s.unbindCurrent()
	}
}

// park suspends the frame: it reports frameSuspended to whatever worker
// called resume(), then blocks until the next resume() wakes it back up.
func (fr *frame) park() {
	fr.unbind()
	fr.yieldCh <- frameSuspended
	<-fr.resumeCh
	fr.bind()
}
