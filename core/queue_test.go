package core

import "testing"

func TestLocalQueue_PopIsFIFOUnderSequentialPush(t *testing.T) {
	var q localQueue
	a := NewLeafJob(func() {})
	b := NewLeafJob(func() {})
	c := NewLeafJob(func() {})

	q.push(a)
	q.push(b)
	q.push(c)

	if got := q.pop(); got != a {
		t.Fatalf("first pop = job %d, want job %d (a)", got.ID(), a.ID())
	}
	if got := q.pop(); got != b {
		t.Fatalf("second pop = job %d, want job %d (b)", got.ID(), b.ID())
	}
	if got := q.pop(); got != c {
		t.Fatalf("third pop = job %d, want job %d (c)", got.ID(), c.ID())
	}
	if got := q.pop(); got != nil {
		t.Fatalf("pop on empty queue = %v, want nil", got)
	}
}

func TestLocalQueue_LenTracksDepth(t *testing.T) {
	var q localQueue
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
	q.push(NewLeafJob(func() {}))
	q.push(NewLeafJob(func() {}))
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	q.pop()
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
}

func TestLocalQueue_SingleNodeFallsBackToHeadPop(t *testing.T) {
	var q localQueue
	a := NewLeafJob(func() {})
	q.push(a)
	if got := q.pop(); got != a {
		t.Fatalf("pop() = %v, want the single pushed job", got)
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
}

func TestSharedStack_PopIsLIFO(t *testing.T) {
	var s sharedStack
	a := NewLeafJob(func() {})
	b := NewLeafJob(func() {})
	s.push(a)
	s.push(b)

	if got := s.pop(); got != b {
		t.Fatalf("first pop = job %d, want job %d (b, most recently pushed)", got.ID(), b.ID())
	}
	if got := s.pop(); got != a {
		t.Fatalf("second pop = job %d, want job %d (a)", got.ID(), a.ID())
	}
}

func TestSharedQueue_HighPriorityOvertakesNormal(t *testing.T) {
	q := newSharedQueue()
	normal := NewLeafJob(func() {})
	high := NewLeafJob(func() {}).WithPriority(PriorityHigh)

	q.push(normal)
	q.push(high)

	if got := q.pop(); got != high {
		t.Fatalf("first pop = job %d, want the high priority job", got.ID())
	}
	if got := q.pop(); got != normal {
		t.Fatalf("second pop = job %d, want the normal priority job", got.ID())
	}
}

func TestSharedQueue_SamePriorityIsFIFOStable(t *testing.T) {
	q := newSharedQueue()
	first := NewLeafJob(func() {}).WithPriority(PriorityHigh)
	second := NewLeafJob(func() {}).WithPriority(PriorityHigh)
	q.push(first)
	q.push(second)

	if got := q.pop(); got != first {
		t.Fatalf("first pop = job %d, want the first-pushed high priority job", got.ID())
	}
	if got := q.pop(); got != second {
		t.Fatalf("second pop = job %d, want the second-pushed high priority job", got.ID())
	}
}

func TestSharedQueue_LenCountsBothPaths(t *testing.T) {
	q := newSharedQueue()
	q.push(NewLeafJob(func() {}))
	q.push(NewLeafJob(func() {}).WithPriority(PriorityLow))
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
}
