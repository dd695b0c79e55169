package core

import (
	"container/heap"
	"sync"
	"sync/atomic"
)

// localQueue is a worker's own job queue: any goroutine may push onto it,
// but only the owning worker ever pops from it (multi-producer,
// single-consumer). Pushes are a lock-free CAS prepend at the head; pop
// walks from the head to the tail and dequeues there, giving FIFO order.
// When the list holds only a single node, it falls back to a CAS pop at the
// head instead; if that CAS loses a race to a concurrent push, the retry
// takes the newly pushed node, which is LIFO. That fallback is an accepted, intentionally narrow window
// where FIFO order can be violated under producer contention — the same
// trade-off the source algorithm this is ported from makes.
type localQueue struct {
	head  atomic.Pointer[Job]
	depth atomic.Int32
}

func (q *localQueue) push(j *Job) {
	for {
		old := q.head.Load()
		j.next.Store(old)
		if q.head.CompareAndSwap(old, j) {
			q.depth.Add(1)
			return
		}
	}
}

func (q *localQueue) pop() *Job {
	head := q.head.Load()
	if head == nil {
		return nil
	}

	for head.next.Load() != nil {
		last := head
		head = head.next.Load()
		if head.next.Load() == nil {
			last.next.Store(nil)
			q.depth.Add(-1)
			return head
		}
	}

	for head != nil {
		next := head.next.Load()
		if q.head.CompareAndSwap(head, next) {
			q.depth.Add(-1)
			return head
		}
		head = q.head.Load()
	}
	return nil
}

func (q *localQueue) Len() int { return int(q.depth.Load()) }

// sharedStack is the Treiber stack backing the process-wide shared queue:
// any worker may push or pop, CAS guards both ends, and order is LIFO.
type sharedStack struct {
	head  atomic.Pointer[Job]
	depth atomic.Int32
}

func (s *sharedStack) push(j *Job) {
	for {
		old := s.head.Load()
		j.next.Store(old)
		if s.head.CompareAndSwap(old, j) {
			s.depth.Add(1)
			return
		}
	}
}

func (s *sharedStack) pop() *Job {
	for {
		head := s.head.Load()
		if head == nil {
			return nil
		}
		next := head.next.Load()
		if s.head.CompareAndSwap(head, next) {
			s.depth.Add(-1)
			return head
		}
	}
}

func (s *sharedStack) Len() int { return int(s.depth.Load()) }

// priorityItem wraps a Job in the auxiliary priority index (see
// sharedQueue below).
type priorityItem struct {
	job      *Job
	sequence uint64
	index    int
}

type priorityHeap []*priorityItem

func (h priorityHeap) Len() int { return len(h) }

func (h priorityHeap) Less(i, j int) bool {
	if h[i].job.priority != h[j].job.priority {
		return h[i].job.priority > h[j].job.priority
	}
	return h[i].sequence < h[j].sequence
}

func (h priorityHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *priorityHeap) Push(x any) {
	item := x.(*priorityItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// sharedQueue is the full process-wide shared queue exposed to the pool: a
// lock-free Treiber stack carries PriorityNormal jobs (the common path, and
// the one that keeps the MPMC contract lock-free), while a small
// mutex-guarded heap carries jobs with an explicit non-default priority,
// ordered by priority and then by a monotonically increasing sequence
// number (FIFO among jobs of equal priority). A pop takes a High-priority
// job from the heap first, then a job from the stack, and only then a
// Low-priority job from the heap. The heap has no size bound and no aging:
// a lower-priority job waits for as long as higher-priority work keeps
// arriving. This is an optional hint layered on top of the lock-free core,
// never a replacement for it.
type sharedQueue struct {
	stack sharedStack

	mu           sync.Mutex
	pq           priorityHeap
	nextSequence uint64
}

func newSharedQueue() *sharedQueue {
	return &sharedQueue{pq: make(priorityHeap, 0, 8)}
}

func (q *sharedQueue) push(j *Job) {
	if j.priority == PriorityNormal {
		q.stack.push(j)
		return
	}
	q.mu.Lock()
	heap.Push(&q.pq, &priorityItem{job: j, sequence: q.nextSequence})
	q.nextSequence++
	q.mu.Unlock()
}

func (q *sharedQueue) pop() *Job {
	q.mu.Lock()
	if len(q.pq) > 0 && q.pq[0].job.priority > PriorityNormal {
		item := heap.Pop(&q.pq).(*priorityItem)
		q.mu.Unlock()
		return item.job
	}
	q.mu.Unlock()
	if j := q.stack.pop(); j != nil {
		return j
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pq) > 0 {
		return heap.Pop(&q.pq).(*priorityItem).job
	}
	return nil
}

func (q *sharedQueue) Len() int {
	q.mu.Lock()
	n := len(q.pq)
	q.mu.Unlock()
	return n + q.stack.Len()
}
