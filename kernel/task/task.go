// Package task implements the task record, ID allocation, stack
// ownership, state machine and current-task anchor (spec.md §4.9).
// Grounded on original_source/axtask/src/task.rs for the overall shape
// (boxed entry closure, lazily-initialised register context, stack
// ownership tied to the task) and on gopher-os's preference for explicit
// atomic fields over ad-hoc locking for small counters.
package task

import (
	"sync/atomic"

	"rvkernel/kernel/config"
	"rvkernel/kernel/mem"
)

// State is a task's position in its lifecycle.
type State int32

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateExited
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Context holds the callee-saved registers and stack pointer a context
// switch preserves. Its fields are written only by the assembly-backed
// switch routine (spec.md §4.8 "Context switch"); Go code never reads or
// writes them directly except to seed a fresh task's initial resumption
// point.
type Context struct {
	SP    uintptr
	RA    uintptr
	Saved [12]uintptr // s0-s11
}

// Task is one schedulable unit of execution.
type Task struct {
	ID   uint64
	Name string

	state       atomic.Int32
	needResched atomic.Bool
	inWaitQueue atomic.Bool
	isIdle      bool
	isInit      bool

	preemptDisableCount atomic.Int32
	timeSlice           atomic.Int32

	refCount atomic.Int32

	exitCode int
	ctx      Context

	stackBase uintptr
	stackSize mem.Size

	entry func()
}

var nextID atomic.Uint64

// State/SetState expose the lifecycle field.
func (t *Task) State() State     { return State(t.state.Load()) }
func (t *Task) SetState(s State) { t.state.Store(int32(s)) }

// IsIdle/IsInit report the task's special role, if any.
func (t *Task) IsIdle() bool { return t.isIdle }
func (t *Task) IsInit() bool { return t.isInit }

// NeedResched/SetNeedResched expose the flag scheduler_timer_tick and
// preempt_resched set (spec.md §4.10).
func (t *Task) NeedResched() bool     { return t.needResched.Load() }
func (t *Task) SetNeedResched(v bool) { t.needResched.Store(v) }

// InWaitQueue/SetInWaitQueue track whether a wait queue currently owns a
// reference to this task (spec.md §4.11).
func (t *Task) InWaitQueue() bool     { return t.inWaitQueue.Load() }
func (t *Task) SetInWaitQueue(v bool) { t.inWaitQueue.Store(v) }

// PreemptDisableCount/IncPreemptDisable/DecPreemptDisable back the
// NoPreempt guard (spec.md §4.2, wired through kernel/sync's
// SetPreemptHooks).
func (t *Task) PreemptDisableCount() int32 { return t.preemptDisableCount.Load() }
func (t *Task) IncPreemptDisable()         { t.preemptDisableCount.Add(1) }
func (t *Task) DecPreemptDisable()         { t.preemptDisableCount.Add(-1) }

// CanPreempt reports whether the only preempt-disable in effect is the
// caller's own baseline (spec.md §4.10 "preempt_resched").
func (t *Task) CanPreempt(baseline int32) bool {
	return t.preemptDisableCount.Load() == baseline
}

// TimeSlice/ResetTimeSlice/TickTimeSlice implement MAX_TIME_SLICE
// bookkeeping (spec.md §4.10): "fetch_sub 1; fire if old <= 1".
func (t *Task) TimeSlice() int32 { return t.timeSlice.Load() }
func (t *Task) ResetTimeSlice()  { t.timeSlice.Store(config.MaxTimeSlice) }
func (t *Task) TickTimeSlice() bool {
	old := t.timeSlice.Add(-1) + 1
	return old <= 1
}

// RefCount/Retain/Release track the run-queue/current-anchor dual
// ownership the design notes describe (spec.md §9): not memory-safety
// bookkeeping (Go's GC already owns that) but the GC task's signal for
// when it is safe to reclaim a task's stack.
func (t *Task) RefCount() int32 { return t.refCount.Load() }
func (t *Task) Retain()         { t.refCount.Add(1) }
func (t *Task) Release() int32  { return t.refCount.Add(-1) }

// ExitCode/SetExitCode record the value passed to exit_current.
func (t *Task) ExitCode() int     { return t.exitCode }
func (t *Task) SetExitCode(c int) { t.exitCode = c }

// Context returns a pointer to the task's saved register context, for use
// by the assembly-backed context-switch leaf function.
func (t *Task) Context() *Context { return &t.ctx }

// StackBounds returns the task's stack's [base, base+size) range, used to
// free it once the GC task determines no one still references the task.
func (t *Task) StackBounds() (uintptr, mem.Size) { return t.stackBase, t.stackSize }

func newCommon(name string) *Task {
	t := &Task{
		ID:   nextID.Add(1),
		Name: name,
	}
	t.state.Store(int32(StateReady))
	t.timeSlice.Store(config.MaxTimeSlice)
	t.refCount.Store(1)
	return t
}
