package task

import (
	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/alloc"
)

// exitCurrentFn is wired by kernel/sched's init to break the task<->sched
// import cycle (the same SetPreemptHooks-style indirection kernel/sync
// uses; spec.md §4.10's exit_current lives in the run queue, but the
// trampoline that calls it runs on the task's own stack).
var exitCurrentFn = func(code int) {}

// SetExitHook installs the function the entry trampoline calls once a
// task's body returns.
func SetExitHook(fn func(code int)) { exitCurrentFn = fn }

// enableInterruptsFn is wired the same way, to the cpu package's
// EnableInterrupts, so this package does not need to import cpu directly
// for a single call (kept an indirection for symmetry with the exit hook
// and so tests can run the trampoline without a real CSR).
var enableInterruptsFn = func() {}

// SetInterruptEnableHook installs the function the entry trampoline calls
// before invoking the task body (spec.md §4.9 "(a) enables IRQs").
func SetInterruptEnableHook(fn func()) { enableInterruptsFn = fn }

// New allocates a stack of align_up(stackSize, PAGE_SIZE) bytes aligned
// to 16 and a task whose first resumption runs entry via the trampoline
// (spec.md §4.9 "new").
func New(entry func(), name string, stackSize mem.Size) (*Task, error) {
	aligned := mem.Size(mem.AlignUp(uintptr(stackSize), uintptr(mem.PageSize)))
	base, err := alloc.Alloc(alloc.Layout{Size: aligned, Align: 16})
	if err != nil {
		return nil, err
	}

	t := newCommon(name)
	t.entry = entry
	t.stackBase = base
	t.stackSize = aligned
	// The assembly context-switch routine reads SP/RA/Saved to resume a
	// task for the first time; here we only record the stack's top. The
	// resumption point (the trampoline that calls Entry) and the actual
	// first-switch register layout are the architecture support file's
	// responsibility, exactly as gopher-os leaves context save/restore to
	// its own assembly rather than Go.
	t.ctx.SP = base + uintptr(aligned)
	return t, nil
}

// NewInit wraps the already-running context with no stack allocation and
// no entry closure (spec.md §4.9 "new_init"); used for the main task.
func NewInit(name string) *Task {
	t := newCommon(name)
	t.isInit = true
	return t
}

// NewIdle creates the idle task: its body loops yielding, and the run
// queue falls back to it when ready is empty (spec.md §4.9 "Idle task").
// yieldCurrent is injected rather than imported to avoid a cycle with
// kernel/sched.
func NewIdle(stackSize mem.Size, yieldCurrent func()) (*Task, error) {
	t, err := New(func() {
		for {
			yieldCurrent()
		}
	}, "idle", stackSize)
	if err != nil {
		return nil, err
	}
	t.isIdle = true
	return t, nil
}

// Entry runs the task's body, used by the trampoline. Exposed so
// kernel/sched's assembly-adjacent bring-up code can invoke it without
// this package importing the scheduler.
func (t *Task) Entry() {
	enableInterruptsFn()
	if t.entry != nil {
		t.entry()
	}
	exitCurrentFn(0)
}
