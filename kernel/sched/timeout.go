package sched

import (
	"rvkernel/kernel/sync"
	"rvkernel/kernel/task"
)

// timeoutWaiter records a task waiting on wq with a countdown of timer
// ticks remaining before it is force-woken. Resolves the Open Question
// left by spec.md §4.11 on wait-queue timeouts: a single list is scanned
// once per timer tick rather than threading a deadline through every
// WaitQueue (see SPEC_FULL.md).
type timeoutWaiter struct {
	t        *task.Task
	wq       *WaitQueue
	ticks    int32
	timedOut bool
}

var timeouts = sync.NewSpinNoIrq([]*timeoutWaiter{})

// WaitTimeout blocks the current task on wq until cond holds or ticks
// timer ticks elapse, whichever comes first, returning false on timeout.
func WaitTimeout(wq *WaitQueue, cond func() bool, ticks int32) bool {
	w := &timeoutWaiter{t: task.Current(), wq: wq, ticks: ticks}

	tok := timeouts.Lock()
	*tok.Get() = append(*tok.Get(), w)
	tok.Unlock()

	wq.WaitUntil(func() bool {
		return cond() || w.timedOut
	})

	removeTimeout(w)
	return !w.timedOut
}

func removeTimeout(w *timeoutWaiter) {
	tok := timeouts.Lock()
	defer tok.Unlock()
	list := *tok.Get()
	for i, x := range list {
		if x == w {
			*tok.Get() = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// TickTimeouts is called once per timer tick (from the IRQ dispatcher's
// timer path) to decrement every outstanding deadline and force-wake
// whichever expire.
func TickTimeouts() {
	tok := timeouts.Lock()
	list := *tok.Get()
	var expired, remaining []*timeoutWaiter
	for _, w := range list {
		w.ticks--
		if w.ticks <= 0 {
			w.timedOut = true
			expired = append(expired, w)
		} else {
			remaining = append(remaining, w)
		}
	}
	*tok.Get() = remaining
	tok.Unlock()

	for _, w := range expired {
		w.wq.NotifyTask(w.t)
	}
}
