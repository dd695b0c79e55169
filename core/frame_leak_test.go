package core

import (
	"runtime"
	"testing"
	"time"
)

// TestFrameLeak_CompletedFramesDoNotLeaveGoroutinesBehind verifies that a
// resumable job's dedicated goroutine (see frame.run in promise.go) exits on
// its own once the body returns, rather than lingering until the scheduler
// terminates.
func TestFrameLeak_CompletedFramesDoNotLeaveGoroutinesBehind(t *testing.T) {
	s := newTestScheduler(t, WithWorkers(4))

	baseline := runtime.NumGoroutine()

	const n = 200
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		job := Go(func(y *Yield) {
			child := NewLeafJob(func() {})
			y.Await(child)
			done <- struct{}{}
		})
		s.Schedule(job)
	}
	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("not all resumable jobs completed")
		}
	}

	var after int
	for i := 0; i < 10; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
		after = runtime.NumGoroutine()
		if after <= baseline+2 {
			break
		}
	}
	if after > baseline+2 {
		t.Fatalf("goroutine count after completion = %d, baseline = %d; frame goroutines appear to have leaked", after, baseline)
	}
}

// TestFrameLeak_TerminateDoesNotWaitOnParkedFrames documents the one
// in-flight leak the scheduler's Non-goals accept: Terminate only asks
// workers to stop picking up new queue entries, it does not hunt down and
// cancel a resumable job already parked on an Await. If that job's awaited
// child never gets to run, the parked frame's goroutine is abandoned rather
// than collected — a direct consequence of "no cancellation of in-flight
// jobs". What this test actually pins down is the liveness half: Terminate
// and WaitForTermination still return promptly, proving the scheduler never
// blocks shutdown on outstanding parked frames.
func TestFrameLeak_TerminateDoesNotWaitOnParkedFrames(t *testing.T) {
	s := newScheduler(WithWorkers(1))
	s.start()

	parked := make(chan struct{})
	job := Go(func(y *Yield) {
		child := NewLeafJob(func() {})
		close(parked)
		y.Await(child)
	})
	s.Schedule(job)

	select {
	case <-parked:
	case <-time.After(2 * time.Second):
		t.Fatal("job never reached its Await")
	}

	doneCh := make(chan struct{})
	go func() {
		s.Terminate()
		s.WaitForTermination()
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Terminate/WaitForTermination blocked on a parked frame")
	}
}
