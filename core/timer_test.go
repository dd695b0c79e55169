package core

import (
	"testing"
	"time"
)

func TestTimerJob_FiresAfterDelay(t *testing.T) {
	s := newTestScheduler(t)

	start := time.Now()
	done := make(chan struct{})
	TimerJob(s, 30*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer job never fired")
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Fatalf("timer job fired after %v, expected at least ~30ms", elapsed)
	}
}

func TestTimerJob_PanicsOnNilFunc(t *testing.T) {
	s := newTestScheduler(t)
	defer func() {
		if recover() == nil {
			t.Fatal("TimerJob with a nil func should panic")
		}
	}()
	TimerJob(s, time.Millisecond, nil)
}

func TestTimerJob_MultipleTimersFireInDeadlineOrder(t *testing.T) {
	s := newTestScheduler(t)

	var order []int
	done := make(chan struct{})

	remaining := 3
	record := func(i int) func() {
		return func() {
			order = append(order, i)
			remaining--
			if remaining == 0 {
				close(done)
			}
		}
	}

	TimerJob(s, 60*time.Millisecond, record(2))
	TimerJob(s, 10*time.Millisecond, record(0))
	TimerJob(s, 30*time.Millisecond, record(1))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("not all timer jobs fired")
	}
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("fire order = %v, want [0 1 2]", order)
	}
}
