package sched

import "rvkernel/kernel/sync"

// Mutex is a blocking mutual-exclusion lock built on a WaitQueue instead
// of spinning, for critical sections long enough that a task should give
// up the hart rather than busy-wait (spec.md §4.13 "Mutex"). It guards no
// payload itself, mirroring the original's separation of the lock from
// the data it protects; callers pair it with their own shared state.
type Mutex struct {
	st *sync.SpinNoIrq[bool]
	wq *WaitQueue
}

// NewMutex constructs an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{st: sync.NewSpinNoIrq(false), wq: NewWaitQueue()}
}

// Lock blocks until the mutex is acquired (spec.md §8 concrete scenario 6).
func (m *Mutex) Lock() {
	m.wq.WaitUntil(func() bool {
		tok := m.st.Lock()
		defer tok.Unlock()
		if !*tok.Get() {
			*tok.Get() = true
			return true
		}
		return false
	})
}

// TryLock attempts to acquire the mutex without blocking, returning
// whether it succeeded.
func (m *Mutex) TryLock() bool {
	tok := m.st.Lock()
	defer tok.Unlock()
	if *tok.Get() {
		return false
	}
	*tok.Get() = true
	return true
}

// Unlock releases the mutex and wakes one waiter, if any. The woken
// waiter re-enters its Lock retry loop rather than being forced onto the
// hart immediately (spec.md §4.13: "in cooperative mode, yield_now() in
// the wait predicate is sufficient"), so no reschedule hint is requested
// here — the next timer tick or explicit yield picks it up.
func (m *Mutex) Unlock() {
	tok := m.st.Lock()
	*tok.Get() = false
	tok.Unlock()
	m.wq.NotifyOne(false)
}
