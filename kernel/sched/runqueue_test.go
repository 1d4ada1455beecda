package sched

import (
	"testing"

	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/alloc"
	"rvkernel/kernel/task"
)

// resetSchedForTest gives each test a fresh arena, already switched to the
// final allocators as boot does before the scheduler starts (task stacks
// are page-multiple, 16-aligned byte requests, which the early allocator
// rejects), a fresh run queue, and replaces the asm-backed context switch
// (switchFn) with a no-op — nothing in `go test` can resume a second call
// stack.
func resetSchedForTest(t *testing.T) {
	t.Helper()
	alloc.Init(0x80100000, mem.Size(4*1024*1024))
	if err := alloc.FinalInit(0x90000000, mem.Size(4*1024*1024)); err != nil {
		t.Fatal(err)
	}

	tok := rq.Lock()
	*tok.Get() = rqState{}
	tok.Unlock()

	switchFn = func(prev, next *task.Context) {}
}

// newInitAndScheduler wraps the common Init(main, ...) dance shared by
// most tests in this package.
func newInitAndScheduler(t *testing.T) *task.Task {
	t.Helper()
	main := task.NewInit("main")
	if err := Init(main, mem.Size(4096)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return main
}

func newTestTask(t *testing.T, name string) *task.Task {
	t.Helper()
	tk, err := task.New(func() {}, name, mem.Size(4096))
	if err != nil {
		t.Fatalf("task.New(%s): %v", name, err)
	}
	tk.SetState(task.StateReady)
	return tk
}

// TestReschedFIFOOrder exercises spec.md §4.10's resched: a yielding task
// goes to the tail, and ready tasks run in FIFO order.
func TestReschedFIFOOrder(t *testing.T) {
	resetSchedForTest(t)

	main := task.NewInit("main")
	if err := Init(main, mem.Size(4096)); err != nil {
		t.Fatal(err)
	}

	a := newTestTask(t, "a")
	b := newTestTask(t, "b")
	AddTask(a)
	AddTask(b)

	YieldCurrent() // main -> ready tail; a runs next
	if task.Current() != a {
		t.Fatalf("expected a to run, got %v", task.Current())
	}

	YieldCurrent() // a -> ready tail; b runs next
	if task.Current() != b {
		t.Fatalf("expected b to run, got %v", task.Current())
	}

	YieldCurrent() // b -> ready tail; main runs next (front of [main, a, b])
	if task.Current() != main {
		t.Fatalf("expected main to run, got %v", task.Current())
	}
}

// TestReschedFallsBackToIdle checks that an empty ready queue falls back
// to the idle task (spec.md §4.10 "resched").
func TestReschedFallsBackToIdle(t *testing.T) {
	resetSchedForTest(t)

	main := task.NewInit("main")
	if err := Init(main, mem.Size(4096)); err != nil {
		t.Fatal(err)
	}

	// main blocks with nothing else ready, so resched can only pick idle.
	BlockCurrent(func(*task.Task) {})
	tok := rq.Lock()
	idle := tok.Get().idle
	tok.Unlock()

	if task.Current() != idle {
		t.Fatalf("expected idle task to run with an empty ready queue, got %v", task.Current())
	}
}

// TestBlockAndUnblockTask checks that a blocked task is removed from
// scheduling until explicitly unblocked (spec.md §4.10 "block_current"/
// "unblock_task").
func TestBlockAndUnblockTask(t *testing.T) {
	resetSchedForTest(t)

	main := task.NewInit("main")
	if err := Init(main, mem.Size(4096)); err != nil {
		t.Fatal(err)
	}

	a := newTestTask(t, "a")
	AddTask(a)

	YieldCurrent() // main -> a
	if task.Current() != a {
		t.Fatalf("expected a to run, got %v", task.Current())
	}

	var blocked *task.Task
	BlockCurrent(func(tk *task.Task) { blocked = tk })
	if task.Current() != main {
		t.Fatalf("expected main to resume after a blocks, got %v", task.Current())
	}
	if blocked.State() != task.StateBlocked {
		t.Fatalf("expected a to be Blocked, got %v", blocked.State())
	}

	UnblockTask(blocked, false)
	if blocked.State() != task.StateReady {
		t.Fatalf("expected a to be Ready after unblock, got %v", blocked.State())
	}

	YieldCurrent() // main -> a again, now that it is back on the ready queue
	if task.Current() != blocked {
		t.Fatal("expected the unblocked task to be scheduled")
	}
}
