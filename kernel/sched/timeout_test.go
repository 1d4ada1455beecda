package sched

import (
	"testing"

	"rvkernel/kernel/task"
)

// TestTickTimeoutsExpiresWaiter checks that a registered timeout waiter is
// force-woken once its tick count reaches zero, and left alone before
// then (see SPEC_FULL.md's resolution of the wait-queue timeout Open
// Question).
func TestTickTimeoutsExpiresWaiter(t *testing.T) {
	resetSchedForTest(t)
	newInitAndScheduler(t)

	a := newTestTask(t, "a")
	a.SetState(task.StateBlocked)

	wq := NewWaitQueue()
	wq.push(a)

	w := &timeoutWaiter{t: a, wq: wq, ticks: 2}
	tok := timeouts.Lock()
	*tok.Get() = append(*tok.Get(), w)
	tok.Unlock()

	TickTimeouts()
	if a.State() != task.StateBlocked {
		t.Fatalf("expected a to still be blocked after one tick, got %v", a.State())
	}

	TickTimeouts()
	if a.State() != task.StateReady {
		t.Fatalf("expected a to be woken by the timeout, got %v", a.State())
	}
	if !w.timedOut {
		t.Fatal("expected the timedOut flag to be set")
	}

	tok = timeouts.Lock()
	remaining := len(*tok.Get())
	tok.Unlock()
	if remaining != 0 {
		t.Fatalf("expected the expired waiter to be removed, got %d remaining", remaining)
	}
}

// TestRemoveTimeoutOnNormalWake checks that a waiter removed via
// removeTimeout no longer fires once its deadline would have expired.
func TestRemoveTimeoutOnNormalWake(t *testing.T) {
	resetSchedForTest(t)
	newInitAndScheduler(t)

	a := newTestTask(t, "a")
	a.SetState(task.StateBlocked)
	wq := NewWaitQueue()
	wq.push(a)

	w := &timeoutWaiter{t: a, wq: wq, ticks: 1}
	tok := timeouts.Lock()
	*tok.Get() = append(*tok.Get(), w)
	tok.Unlock()

	// Simulate a normal notify winning the race before the timeout fires.
	wq.NotifyOne(false)
	removeTimeout(w)

	TickTimeouts()
	if w.timedOut {
		t.Fatal("expected a removed waiter not to be marked timed out")
	}
}
