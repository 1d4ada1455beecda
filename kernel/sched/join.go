package sched

import (
	"rvkernel/kernel/mem"
	"rvkernel/kernel/sync"
	"rvkernel/kernel/task"
)

// Error enumerates join's failure modes.
type Error string

func (e Error) Error() string { return string(e) }

// ErrPacketEmpty is returned by Packet.Take when the spawned closure
// never produced a value (spec.md §4.13: "errors if the packet is
// empty").
const ErrPacketEmpty Error = "packet_empty"

// packetState backs Packet's single-write/single-read protocol.
type packetState[T any] struct {
	value T
	ready bool
}

// Packet is the one-shot cell a spawned closure's return value is written
// into (spec.md §4.13: "JoinHandle<T> owns a shared cell Packet<T> into
// which the spawned closure writes its return value upon completion").
// Modeled on kernel/sync.Spin[G,T]'s guard-parameterised cell rather than
// kernel/cell.BootOnceCell: a packet is written on the spawned task's own
// stack and read from the joiner's, both well after the single-execution-
// context boot phase BootOnceCell documents itself as being scoped to.
type Packet[T any] struct {
	cell *sync.SpinNoIrq[packetState[T]]
}

func newPacket[T any]() *Packet[T] {
	return &Packet[T]{cell: sync.NewSpinNoIrq(packetState[T]{})}
}

func (p *Packet[T]) set(v T) {
	tok := p.cell.Lock()
	tok.Get().value = v
	tok.Get().ready = true
	tok.Unlock()
}

// Take extracts the packet's value, returning ErrPacketEmpty if the
// spawned closure never ran to completion.
func (p *Packet[T]) Take() (T, error) {
	tok := p.cell.Lock()
	defer tok.Unlock()
	st := tok.Get()
	if !st.ready {
		var zero T
		return zero, ErrPacketEmpty
	}
	return st.value, nil
}

// joinRegistry maps a spawned task to the wait queue its Handle's Join
// blocks on. Keyed by pointer since a Task has no notion of its own
// joiners (spec.md §4.13 "join"): keeping that bookkeeping in sched, not
// task, avoids a task->sched import cycle.
var joinRegistry = sync.NewSpinNoIrq(map[*task.Task]*WaitQueue{})

// Handle is returned by Spawn and lets the caller wait for completion and
// retrieve the spawned closure's return value (spec.md §4.13
// "JoinHandle<T>").
type Handle[T any] struct {
	t      *task.Task
	packet *Packet[T]
}

// Spawn creates a new task running entry, registers it for joining and
// schedules it (spec.md §4.13 "spawn"). entry's return value is written
// into the handle's packet when entry returns, for Join to retrieve.
func Spawn[T any](entry func() T, name string, stackSize mem.Size) (*Handle[T], error) {
	packet := newPacket[T]()
	body := func() {
		packet.set(entry())
	}

	t, err := task.New(body, name, stackSize)
	if err != nil {
		return nil, err
	}

	tok := joinRegistry.Lock()
	(*tok.Get())[t] = NewWaitQueue()
	tok.Unlock()

	t.SetState(task.StateReady)
	AddTask(t)
	return &Handle[T]{t: t, packet: packet}, nil
}

// Join blocks the calling task until the spawned task has exited, then
// returns the value entry produced (spec.md §8 concrete scenario 5).
// Returns ErrPacketEmpty if entry never ran to completion (the task was
// cancelled or never reached its return).
func (h *Handle[T]) Join() (T, error) {
	tok := joinRegistry.Lock()
	wq := (*tok.Get())[h.t]
	tok.Unlock()

	if wq != nil {
		wq.WaitUntil(func() bool { return h.t.State() == task.StateExited })
	}

	tok = joinRegistry.Lock()
	delete(*tok.Get(), h.t)
	tok.Unlock()

	return h.packet.Take()
}

// notifyJoiners wakes anyone blocked in Join on t, called from
// ExitCurrent (spec.md §4.10 "exit_current" step "wake joiners").
func notifyJoiners(t *task.Task) {
	tok := joinRegistry.Lock()
	wq := (*tok.Get())[t]
	tok.Unlock()

	if wq != nil {
		wq.NotifyAll(false)
	}
}
