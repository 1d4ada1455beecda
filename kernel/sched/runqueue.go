// Package sched implements the run queue (C10), wait queue (C11), IRQ-
// driven preemption hookup and the mutex/join primitives (C13) built on
// top of them (spec.md §4.10-§4.11, §4.13). Grounded on
// original_source/axtask's run_queue.rs/wait_queue.rs for the algorithms,
// expressed with kernel/sync's guard-parameterised Spin in place of
// spinlock::SpinNoIrq/SpinRaw.
package sched

import (
	"rvkernel/kernel/cpu"
	"rvkernel/kernel/mem"
	"rvkernel/kernel/sync"
	"rvkernel/kernel/task"
)

type rqState struct {
	ready  []*task.Task
	idle   *task.Task
	exited []*task.Task
}

var rq = sync.NewSpinNoIrq(rqState{})

func init() {
	sync.SetPreemptHooks(
		func() {
			if t := task.Current(); t != nil {
				t.IncPreemptDisable()
			}
		},
		func() {
			if t := task.Current(); t != nil {
				t.DecPreemptDisable()
				deferredPreemptCheck(t)
			}
		},
	)
	task.SetExitHook(func(code int) { ExitCurrent(code) })
	task.SetInterruptEnableHook(cpu.EnableInterrupts)
}

// deferredPreemptCheck is the "check and reschedule if pending and
// allowed" hook spec.md §9's "Timer handler re-entrancy" note requires at
// every preempt-enable: the timer handler itself only sets need_resched
// and rearms (see kernel/irq); the actual resched happens here, the first
// time the interrupted task's preempt-disable count returns to zero.
func deferredPreemptCheck(t *task.Task) {
	if t.NeedResched() && t.PreemptDisableCount() == 0 {
		resched(true)
	}
}

// Init installs main as the running task and spawns the idle task
// (spec.md §4.9's "Idle task" and §4.10's fallback-to-idle behaviour).
func Init(main *task.Task, idleStackSize mem.Size) error {
	idle, err := task.NewIdle(idleStackSize, YieldCurrent)
	if err != nil {
		return err
	}

	tok := rq.Lock()
	tok.Get().idle = idle
	tok.Unlock()

	main.SetState(task.StateRunning)
	task.InitCurrent(main)
	return nil
}

// addTaskLocked is add_task's body, callable by code that already holds
// the run queue lock (spec.md §4.11 "Variants _locked exist that are
// called with the run-queue lock already held").
func addTaskLocked(st *rqState, t *task.Task) {
	st.ready = append(st.ready, t)
}

// AddTask pushes t onto the tail of ready (spec.md §4.10 "add_task").
// t must already be in StateReady.
func AddTask(t *task.Task) {
	tok := rq.Lock()
	defer tok.Unlock()
	addTaskLocked(tok.Get(), t)
}

// YieldCurrent reschedules without preemption semantics, letting resched
// itself move the running task to Ready and back onto the ready queue
// (spec.md §4.10 "yield_current").
func YieldCurrent() {
	resched(false)
}

// ExitCurrent terminates the running task (spec.md §4.10 "exit_current").
// Never returns: either the machine shuts down (init task) or resched
// hands control to a different task.
func ExitCurrent(code int) {
	cur := task.Current()
	if cur.State() != task.StateRunning || cur.IsIdle() {
		panic("exit_current: called from a non-running or idle task")
	}

	if cur.IsInit() {
		tok := rq.Lock()
		tok.Get().exited = tok.Get().exited[:0]
		tok.Unlock()
		cpu.SBIShutdown()
		panic("exit_current: SBI shutdown returned")
	}

	cur.SetExitCode(code)

	// State transition and exited-list placement happen under one
	// rq.Lock() critical section (spec.md §5: the wait-queue/exited-list
	// lock is always acquired under the run-queue lock when transitioning
	// a task in or out), so a trap landing mid-transition never finds cur
	// neither running nor recorded anywhere the GC task or resched can see.
	tok := rq.Lock()
	cur.SetState(task.StateExited)
	tok.Get().exited = append(tok.Get().exited, cur)
	tok.Unlock()

	notifyJoiners(cur)
	wakeGC()
	resched(false)
}

// BlockCurrent marks the running task Blocked and hands it to pushFn
// (which places it on a wait queue) before rescheduling (spec.md §4.10
// "block_current").
func BlockCurrent(pushFn func(*task.Task)) {
	cur := task.Current()
	if cur.State() != task.StateRunning || cur.IsIdle() {
		panic("block_current: called from a non-running or idle task")
	}
	// State transition and wait-queue placement happen under one
	// rq.Lock() critical section (spec.md §5): pushFn only ever takes a
	// WaitQueue's inner SpinRaw, which assumes IRQs are already disabled
	// by this lock, so a trap landing mid-transition never finds cur
	// neither running nor on any queue.
	tok := rq.Lock()
	cur.SetState(task.StateBlocked)
	pushFn(cur)
	tok.Unlock()

	resched(false)
}

// unblockTaskLocked is unblock_task's body, callable by code that already
// holds the run queue lock (e.g. a wait queue's notify_one/notify_all).
func unblockTaskLocked(st *rqState, t *task.Task, reschedHint bool) {
	if t.State() != task.StateBlocked {
		return
	}
	t.SetState(task.StateReady)
	addTaskLocked(st, t)
	if reschedHint {
		if cur := task.Current(); cur != nil {
			cur.SetNeedResched(true)
		}
	}
}

// UnblockTask makes t ready again if it is Blocked, optionally requesting
// a reschedule of the current task (spec.md §4.10 "unblock_task").
func UnblockTask(t *task.Task, reschedHint bool) {
	tok := rq.Lock()
	defer tok.Unlock()
	unblockTaskLocked(tok.Get(), t, reschedHint)
}

// SchedulerTimerTick is called from the timer IRQ handler (spec.md §4.10
// "scheduler_timer_tick").
func SchedulerTimerTick() {
	cur := task.Current()
	if cur == nil || cur.IsIdle() {
		return
	}
	if cur.TickTimeSlice() {
		cur.SetNeedResched(true)
	}
}

// PreemptResched reschedules now if the only outstanding preempt-disable
// is the caller's own (baseline 1), else just sets need_resched for later
// (spec.md §4.10 "preempt_resched").
func PreemptResched() {
	cur := task.Current()
	if cur == nil {
		return
	}
	if cur.CanPreempt(1) {
		resched(true)
	} else {
		cur.SetNeedResched(true)
	}
}

// resched implements spec.md §4.10's "resched(preempt)" algorithm.
func resched(preempt bool) {
	tok := rq.Lock()
	st := tok.Get()

	prev := task.Current()
	if prev.State() == task.StateRunning {
		prev.SetState(task.StateReady)
		if !prev.IsIdle() {
			if preempt && prev.TimeSlice() > 0 {
				st.ready = append([]*task.Task{prev}, st.ready...)
			} else {
				prev.ResetTimeSlice()
				st.ready = append(st.ready, prev)
			}
		}
	}

	var next *task.Task
	if len(st.ready) > 0 {
		next = st.ready[0]
		st.ready = st.ready[1:]
	} else {
		next = st.idle
	}

	next.SetNeedResched(false)
	next.SetState(task.StateRunning)

	if prev == next {
		tok.Unlock()
		return
	}

	task.SetCurrent(prev, next)
	switchFn(prev.Context(), next.Context())
	tok.Unlock()
}

// switchFn defaults to the real asm-backed leaf call; tests override it
// with a no-op, since nothing actually resumes a second call stack inside
// `go test` (spec.md §4.8).
var switchFn = task.Switch
