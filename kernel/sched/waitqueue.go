package sched

import (
	"rvkernel/kernel/sync"
	"rvkernel/kernel/task"
)

// WaitQueue is a blocking primitive layered on the run queue: an inner
// FIFO under SpinRaw, since everyone reaching it has already gone through
// a SpinNoIrq-guarded run-queue operation and so preempt/IRQs are already
// disabled (spec.md §4.11).
type WaitQueue struct {
	inner *sync.SpinRaw[[]*task.Task]
}

// NewWaitQueue constructs an empty wait queue.
func NewWaitQueue() *WaitQueue {
	return &WaitQueue{inner: sync.NewSpinRaw([]*task.Task{})}
}

func (w *WaitQueue) push(t *task.Task) {
	t.SetInWaitQueue(true)
	tok := w.inner.Lock()
	*tok.Get() = append(*tok.Get(), t)
	tok.Unlock()
}

// WaitUntil blocks the current task until cond returns true (spec.md
// §4.11 "wait_until").
func (w *WaitQueue) WaitUntil(cond func() bool) {
	for {
		if cond() {
			break
		}
		BlockCurrent(w.push)
	}
	w.cancelEvents(task.Current())
}

// Wait blocks the current task until explicitly woken, with no condition
// to re-check (spec.md §4.11 "wait(): same but no predicate").
func (w *WaitQueue) Wait() {
	BlockCurrent(w.push)
	w.cancelEvents(task.Current())
}

// cancelEvents removes t from the inner queue if it is still present,
// e.g. after a timeout woke it without going through notify (spec.md
// §4.11).
func (w *WaitQueue) cancelEvents(t *task.Task) {
	tok := w.inner.Lock()
	defer tok.Unlock()
	list := *tok.Get()
	for i, x := range list {
		if x == t {
			*tok.Get() = append(list[:i], list[i+1:]...)
			t.SetInWaitQueue(false)
			return
		}
	}
}

// NotifyOne wakes the task at the front of the queue, if any, returning
// whether a task was woken (spec.md §4.11 "notify_one").
func (w *WaitQueue) NotifyOne(reschedHint bool) bool {
	rtok := rq.Lock()
	defer rtok.Unlock()

	itok := w.inner.Lock()
	list := *itok.Get()
	if len(list) == 0 {
		itok.Unlock()
		return false
	}
	t := list[0]
	*itok.Get() = list[1:]
	itok.Unlock()

	t.SetInWaitQueue(false)
	unblockTaskLocked(rtok.Get(), t, reschedHint)
	return true
}

// NotifyAll repeatedly calls NotifyOne until the queue is empty, returning
// how many tasks were woken (spec.md §4.11 "notify_all").
func (w *WaitQueue) NotifyAll(reschedHint bool) int {
	n := 0
	for w.NotifyOne(reschedHint) {
		n++
	}
	return n
}

// NotifyTask wakes a specific task out of the queue regardless of its
// position, used by the timer-driven timeout scan (spec.md's wait-queue
// timeout resolution, see SPEC_FULL.md).
func (w *WaitQueue) NotifyTask(t *task.Task) {
	rtok := rq.Lock()
	defer rtok.Unlock()

	itok := w.inner.Lock()
	list := *itok.Get()
	for i, x := range list {
		if x == t {
			*itok.Get() = append(list[:i], list[i+1:]...)
			break
		}
	}
	itok.Unlock()

	t.SetInWaitQueue(false)
	unblockTaskLocked(rtok.Get(), t, false)
}
