package core

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// Scheduler is the process-wide job system: a fixed pool of worker
// goroutines, one local queue per worker, and a shared queue, plus the
// bookkeeping that lets CurrentJob/ThreadIndex answer without any explicit
// context argument. There is normally exactly one Scheduler per process,
// reached through Instance; nothing prevents constructing more for tests
// that want full isolation.
type Scheduler struct {
	cfg *Config

	shared  *sharedQueue
	workers []*worker

	terminating atomic.Bool
	wg          sync.WaitGroup

	startBarrier atomic.Int32

	// registry maps the id of whichever goroutine is currently executing a
	// job (a worker's own loop goroutine for a leaf job, or a promise
	// frame's dedicated goroutine for a resumable job) to that job's
	// worker index and identity. This is the goroutine-local-storage
	// substitute for the original's thread_local current-job/thread-index
	// pair.
	registry sync.Map // int64 goroutine id -> *activeSlot

	delayOnce sync.Once
	delay     *delayManager
}

type activeSlot struct {
	workerIndex int
	job         *Job
}

type worker struct {
	index int
	local localQueue
}

var (
	instanceMu sync.Mutex
	instance   *Scheduler
)

// Instance returns the process-wide Scheduler, constructing and starting it
// on the first call. Subsequent calls ignore the options and return the
// already-running instance, mirroring the original system's
// std::call_once-guarded singleton.
func Instance(opts ...Option) *Scheduler {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance
	}
	instance = newScheduler(opts...)
	instance.start()
	return instance
}

// InstanceCreated reports whether the singleton has been constructed yet.
func InstanceCreated() bool {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance != nil
}

// resetForTest tears down and clears the singleton. It is unexported and
// used only from _test.go files, which need a fresh Scheduler per test case
// rather than one shared process-wide instance.
func resetForTest() {
	instanceMu.Lock()
	s := instance
	instance = nil
	instanceMu.Unlock()
	if s != nil {
		s.Terminate()
		s.WaitForTermination()
	}
}

func newScheduler(opts ...Option) *Scheduler {
	cfg := applyOptions(opts)
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
		if cfg.Workers < 1 {
			cfg.Workers = 1
		}
	}

	s := &Scheduler{
		cfg:    cfg,
		shared: newSharedQueue(),
	}
	s.workers = make([]*worker, cfg.Workers)
	for i := range s.workers {
		s.workers[i] = &worker{index: i}
	}
	return s
}

func (s *Scheduler) start() {
	spawned := s.cfg.Workers - s.cfg.StartIndex
	if spawned < 0 {
		spawned = 0
	}
	s.startBarrier.Store(int32(spawned))
	s.wg.Add(spawned)
	for i := s.cfg.StartIndex; i < s.cfg.Workers; i++ {
		go s.workerLoop(i)
	}
}

// EnterAsWorker runs the worker loop for the given index on the calling
// goroutine until the scheduler terminates. It is for callers that reserved
// a StartIndex > 0 at construction and want their own goroutine (often the
// process's main goroutine) to double as worker 0 rather than sitting idle.
func (s *Scheduler) EnterAsWorker(index int) {
	if index < 0 || index >= len(s.workers) {
		panic(ErrAffinityOutOfRange)
	}
	s.wg.Add(1)
	s.workerLoop(index)
}

func (s *Scheduler) workerLoop(idx int) {
	defer s.wg.Done()

	if remaining := s.startBarrier.Add(-1); remaining < 0 {
		s.startBarrier.Add(1)
	}
	for s.startBarrier.Load() > 0 {
		runtime.Gosched()
	}

	noop := s.cfg.IdleMisses
	w := s.workers[idx]
	for !s.terminating.Load() {
		job := w.local.pop()
		if job == nil {
			job = s.shared.pop()
		}
		if job != nil {
			noop = s.cfg.IdleMisses
			s.runJob(idx, job)
			continue
		}
		noop--
		if noop <= 0 && idx > 0 {
			noop = s.cfg.IdleMisses
			s.cfg.Clock.Sleep(time.Duration(s.cfg.IdleSleep))
		}
	}
}

func (s *Scheduler) runJob(idx int, job *Job) {
	start := s.cfg.Clock.Now()
	finished := s.invoke(idx, job)
	s.cfg.Metrics.ObserveJobDuration(idx, job.kind, s.cfg.Clock.Now().Sub(start))
	if finished {
		s.finishJobBody(job)
	}
}

func (s *Scheduler) invoke(idx int, job *Job) (finished bool) {
	if job.kind == KindLeaf {
		s.bindCurrent(idx, job)
		defer s.unbindCurrent()
	}
	defer func() {
		if r := recover(); r != nil {
			s.cfg.Metrics.IncJobPanic(idx)
			s.cfg.PanicHandler.HandlePanic(idx, job.id, r, debug.Stack())
			panic(r)
		}
	}()
	return job.resume(idx)
}

// schedule routes a job to a worker's local queue (if it carries an
// in-range affinity) or to the shared queue otherwise, per the routing
// rule: affinity present and in range -> that worker's local queue;
// otherwise -> shared queue.
func (s *Scheduler) schedule(job *Job) {
	if s.terminating.Load() {
		panic(ErrSchedulerTerminated)
	}
	job.queuedAt = s.cfg.Clock.Now().UnixNano()
	job.scheduler = s
	idx := -1
	if job.affinity >= 0 && int(job.affinity) < len(s.workers) {
		idx = int(job.affinity)
	}
	if idx >= 0 {
		s.workers[idx].local.push(job)
		s.cfg.Metrics.SetQueueDepth(idx, s.workers[idx].local.Len())
	} else {
		s.shared.push(job)
		s.cfg.Metrics.SetQueueDepth(-1, s.shared.Len())
	}
	s.cfg.Metrics.IncJobsScheduled(idx)
}

// Schedule submits job to the scheduler. A job must never be submitted this
// way more than once; a second call on the same Job panics, since a leaf
// job's body runs exactly once and a resumable job's own lifecycle beyond
// this point is driven entirely by its awaitables, never by a second
// external Schedule/scheduleChild call.
//
// Per the parent linkage rule, Schedule reads CurrentJob(): if it is called
// from within a running job's body, that job automatically becomes job's
// parent, gaining exactly the same structured fan-out/fan-in tracking as a
// child submitted through an Await. A job scheduled from outside any
// running job (e.g. the initial call that starts a job tree) has no parent.
func (s *Scheduler) Schedule(job *Job) {
	if job == nil {
		panic(ErrNilJob)
	}
	markScheduledOnce(job)
	if parent := s.CurrentJob(); parent != nil {
		linkChild(parent, job)
	}
	s.schedule(job)
}

// scheduleChild submits child as a structured child of parent: the parent's
// children counter is incremented before the child becomes visible to any
// worker, preserving the fan-out/fan-in invariant.
func (s *Scheduler) scheduleChild(parent, child *Job) {
	markScheduledOnce(child)
	linkChild(parent, child)
	s.schedule(child)
}

func linkChild(parent, child *Job) {
	parent.addChild()
	child.parent = parent
}

func markScheduledOnce(job *Job) {
	if !job.everScheduled.CompareAndSwap(false, true) {
		panic(ErrDoubleSchedule)
	}
}

// CurrentJob returns the job executing on the calling goroutine, or nil if
// the caller is not running inside a scheduled job.
func (s *Scheduler) CurrentJob() *Job {
	if v, ok := s.registry.Load(goid.Get()); ok {
		return v.(*activeSlot).job
	}
	return nil
}

// ThreadIndex returns the worker index executing on the calling goroutine,
// or -1 if the caller is not running inside a scheduled job.
func (s *Scheduler) ThreadIndex() int {
	if v, ok := s.registry.Load(goid.Get()); ok {
		return v.(*activeSlot).workerIndex
	}
	return -1
}

// WorkerCount returns the number of workers in the pool.
func (s *Scheduler) WorkerCount() int { return len(s.workers) }

// WaitForTermination blocks until every worker goroutine has exited.
func (s *Scheduler) WaitForTermination() { s.wg.Wait() }

// Terminate signals all workers to stop after their current job, if any.
// Jobs still sitting in a queue are not run; resumable jobs among them have
// their frames abandoned (their parked goroutines never resumed again).
func (s *Scheduler) Terminate() { s.terminating.Store(true) }

func (s *Scheduler) bindCurrent(idx int, job *Job) {
	s.registry.Store(goid.Get(), &activeSlot{workerIndex: idx, job: job})
}

func (s *Scheduler) unbindCurrent() {
	s.registry.Delete(goid.Get())
}

// Current returns the process singleton's CurrentJob, or nil if no
// scheduler has been constructed yet.
func Current() *Job {
	instanceMu.Lock()
	s := instance
	instanceMu.Unlock()
	if s == nil {
		return nil
	}
	return s.CurrentJob()
}

// ThreadIndex returns the process singleton's ThreadIndex, or -1 if no
// scheduler has been constructed yet.
func ThreadIndex() int {
	instanceMu.Lock()
	s := instance
	instanceMu.Unlock()
	if s == nil {
		return -1
	}
	return s.ThreadIndex()
}
