package sync

// Spin is a mutual-exclusion cell parameterised by a guard policy G
// (spec.md §4.2). On a single hart the only real contention is against
// interrupts and preemption, so Lock does not spin on a state word at
// all — it acquires the guard and hands back an accessor whose Unlock
// releases it. The guard-release ordering (outer guard released last) is
// what actually provides the exclusion.
type Spin[G Guard, T any] struct {
	guard G
	data  T
}

// NewSpin wraps data under guard policy G.
func NewSpin[G Guard, T any](data T) *Spin[G, T] {
	return &Spin[G, T]{data: data}
}

// SpinToken is the access token returned by Lock; Unlock must be called
// exactly once, and the data reference must not be used afterwards.
type SpinToken[G Guard, T any] struct {
	owner *Spin[G, T]
	state GuardState
}

// Lock acquires the guard and returns a token exposing the protected value.
func (s *Spin[G, T]) Lock() *SpinToken[G, T] {
	state := s.guard.Acquire()
	return &SpinToken[G, T]{owner: s, state: state}
}

// Get returns a pointer to the protected value. Valid only between Lock
// and the matching Unlock.
func (t *SpinToken[G, T]) Get() *T {
	return &t.owner.data
}

// Unlock releases the guard. The critical section ends here, after any
// access to the data the caller made through Get — releasing must happen
// last (spec.md §4.2's nesting invariant).
func (t *SpinToken[G, T]) Unlock() {
	t.owner.guard.Release(t.state)
}

// SpinNoIrq protects data that both task and IRQ context touch (the run
// queue): disables preemption and IRQs.
type SpinNoIrq[T any] struct{ Spin[NoPreemptIrqSave, T] }

// SpinRaw protects data only ever touched while preempt/IRQs are already
// disabled by an outer SpinNoIrq (wait-queue internals).
type SpinRaw[T any] struct{ Spin[NoOp, T] }

// NewSpinNoIrq constructs a SpinNoIrq-guarded cell.
func NewSpinNoIrq[T any](data T) *SpinNoIrq[T] {
	return &SpinNoIrq[T]{Spin[NoPreemptIrqSave, T]{data: data}}
}

// NewSpinRaw constructs a SpinRaw-guarded cell.
func NewSpinRaw[T any](data T) *SpinRaw[T] { return &SpinRaw[T]{Spin[NoOp, T]{data: data}} }
