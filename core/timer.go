package core

import (
	"container/heap"
	"sync"
	"time"
)

// TimerJob builds a plain leaf job around fn and submits it to s through
// Schedule once d has elapsed, as measured by s's Clock. The submission is
// made from the helper's own goroutine, so the job has no parent. The
// returned job is already owned by the scheduler: handing it to Schedule or
// to an Await as well makes a second submission, and whichever of the two
// comes second panics with ErrDoubleSchedule. TimerJob adds no timeout,
// retry, or cancellation semantics to the scheduler itself.
func TimerJob(s *Scheduler, d time.Duration, fn Func) *Job {
	if fn == nil {
		panic(ErrNilJob)
	}
	job := NewLeafJob(fn)
	s.delayManager().add(s.cfg.Clock.Now().Add(d), job)
	return job
}

type delayedEntry struct {
	fireAt time.Time
	job    *Job
	index  int
}

type delayHeap []*delayedEntry

func (h delayHeap) Len() int            { return len(h) }
func (h delayHeap) Less(i, j int) bool  { return h[i].fireAt.Before(h[j].fireAt) }
func (h delayHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *delayHeap) Push(x any) {
	e := x.(*delayedEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *delayHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// delayManager runs a single dedicated goroutine that fires jobs in order of
// delay deadline, adapted from the teacher's DelayManager: a min-heap
// ordered by fire time plus a single reusable timer, rather than one
// goroutine per pending timer.
type delayManager struct {
	s *Scheduler

	mu   sync.Mutex
	h    delayHeap
	wake chan struct{}
}

func (s *Scheduler) delayManager() *delayManager {
	s.delayOnce.Do(func() {
		s.delay = &delayManager{s: s, wake: make(chan struct{}, 1)}
		go s.delay.loop()
	})
	return s.delay
}

func (dm *delayManager) add(fireAt time.Time, job *Job) {
	dm.mu.Lock()
	heap.Push(&dm.h, &delayedEntry{fireAt: fireAt, job: job})
	dm.mu.Unlock()
	select {
	case dm.wake <- struct{}{}:
	default:
	}
}

func (dm *delayManager) nextDelay() (time.Duration, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if len(dm.h) == 0 {
		return 0, false
	}
	d := dm.h[0].fireAt.Sub(dm.s.cfg.Clock.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

func (dm *delayManager) popExpired(now time.Time) []*Job {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	var ready []*Job
	for len(dm.h) > 0 && !dm.h[0].fireAt.After(now) {
		e := heap.Pop(&dm.h).(*delayedEntry)
		ready = append(ready, e.job)
	}
	return ready
}

func (dm *delayManager) loop() {
	for !dm.s.terminating.Load() {
		d, ok := dm.nextDelay()
		if !ok {
			<-dm.wake
			continue
		}
		select {
		case <-dm.s.cfg.Clock.After(d):
		case <-dm.wake:
		}
		for _, job := range dm.popExpired(dm.s.cfg.Clock.Now()) {
			dm.s.Schedule(job)
		}
	}
}
