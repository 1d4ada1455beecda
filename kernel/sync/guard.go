// Package sync provides the critical-section guards and guard-parameterised
// spin locks this kernel uses instead of a busy-waiting lock: on a single
// hart the only contention a lock can see is against interrupts or
// preemption, so "locking" only needs to mask the right thing in the right
// order (spec.md §4.1-§4.2, grounded on original_source/kernel_guard and
// original_source/spinlock/src/{base,noirq,raw}.rs).
package sync

import "rvkernel/kernel/cpu"

// GuardState is the value a guard's Acquire returns and its Release
// consumes to undo exactly what was done (the prior interrupt-enable bit,
// or nothing for a pure preempt guard).
type GuardState uint64

// Guard is the contract every critical-section guard satisfies: acquire on
// construction, release on destruction, both idempotent across nesting.
type Guard interface {
	Acquire() GuardState
	Release(GuardState)
}

// The scheduler installs these once kernel/task is initialised, resolving
// the dependency cycle between sync (wants to disable preemption) and task
// (wants to use spin locks): sync never imports task directly.
var (
	preemptDisableFn = func() {}
	preemptEnableFn  = func() {}
)

// SetPreemptHooks wires NoPreempt's Acquire/Release to the scheduler's
// actual preempt-disable counter. Called once from kernel/sched's init.
func SetPreemptHooks(disable, enable func()) {
	preemptDisableFn = disable
	preemptEnableFn = enable
}

// IrqSave disables supervisor interrupts for the duration of the critical
// section, remembering whatever the interrupt-enable bit previously was so
// a nested IrqSave/release pair is a correct no-op from the outside.
type IrqSave struct{}

func (IrqSave) Acquire() GuardState { return GuardState(cpu.DisableInterrupts()) }
func (IrqSave) Release(s GuardState) { cpu.RestoreInterrupts(uint64(s)) }

// NoPreempt increments the current task's preempt-disable counter. It
// carries no state of its own; nesting is counted on the task (spec.md §4.1).
type NoPreempt struct{}

func (NoPreempt) Acquire() GuardState {
	preemptDisableFn()
	return 0
}
func (NoPreempt) Release(GuardState) { preemptEnableFn() }

// NoPreemptIrqSave composes NoPreempt and IrqSave: disable preemption
// first, then mask interrupts; release in the reverse order.
type NoPreemptIrqSave struct{}

func (NoPreemptIrqSave) Acquire() GuardState {
	preemptDisableFn()
	return GuardState(cpu.DisableInterrupts())
}

func (NoPreemptIrqSave) Release(s GuardState) {
	cpu.RestoreInterrupts(uint64(s))
	preemptEnableFn()
}

// NoOp is a guard that does nothing; used by SpinRaw, whose callers always
// already hold a NoPreemptIrqSave/SpinNoIrq critical section (spec.md §4.2).
type NoOp struct{}

func (NoOp) Acquire() GuardState  { return 0 }
func (NoOp) Release(GuardState) {}
