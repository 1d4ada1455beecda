package sched

import (
	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/alloc"
	"rvkernel/kernel/task"
)

// gcWQ is the GC task's wait queue; exit_current notifies it whenever an
// exited task is queued up for reclamation (spec.md §4.9 "GC task").
var gcWQ = NewWaitQueue()

func wakeGC() {
	gcWQ.NotifyOne(false)
}

// StartGC spawns the GC task, which reclaims the stacks of exited tasks
// once nothing else still references them (spec.md §4.9).
func StartGC(stackSize mem.Size) error {
	t, err := task.New(gcLoop, "gc", stackSize)
	if err != nil {
		return err
	}
	t.SetState(task.StateReady)
	AddTask(t)
	return nil
}

func gcLoop() {
	for {
		gcWQ.WaitUntil(func() bool {
			tok := rq.Lock()
			defer tok.Unlock()
			return len(tok.Get().exited) > 0
		})
		reapExited()
	}
}

// reapExited drains the exited list, freeing the stack of any task whose
// refcount has dropped to 1 (only the exited-list's own reference left)
// and re-queuing the rest for a later pass (spec.md §4.9's refcount-gated
// reclamation design note).
func reapExited() {
	tok := rq.Lock()
	st := tok.Get()
	pending := st.exited
	st.exited = nil
	tok.Unlock()

	var requeue []*task.Task
	for _, t := range pending {
		if t.RefCount() <= 1 {
			freeStack(t)
		} else {
			requeue = append(requeue, t)
		}
	}

	if len(requeue) > 0 {
		tok := rq.Lock()
		tok.Get().exited = append(tok.Get().exited, requeue...)
		tok.Unlock()
	}
}

func freeStack(t *task.Task) {
	base, size := t.StackBounds()
	if size == 0 {
		return
	}
	alloc.Dealloc(base, alloc.Layout{Size: size, Align: 16})
}
