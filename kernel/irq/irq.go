// Package irq implements the trap-driven side of preemption: a static
// table of external-IRQ handler slots, one reserved timer slot, and the
// periodic rearm that keeps the scheduler's timer ticks coming (spec.md
// §4.12). Grounded on original_source/axhal's IRQ table plus gopher-os's
// own table-of-handlers style (kernel/hal's interrupt vector registration),
// expressed with kernel/cell's BootOnceCell for the one-shot timer slot and
// kernel/sync's SpinNoIrq for the external table.
package irq

import (
	"rvkernel/kernel/cell"
	"rvkernel/kernel/config"
	"rvkernel/kernel/cpu"
	"rvkernel/kernel/sched"
	"rvkernel/kernel/sync"
)

// Handler is the signature every registered IRQ handler has; cause is the
// raw scause value (or, for external slots, the PLIC-style IRQ number)
// that triggered the call.
type Handler func(cause uint64)

// scauseSTimer and scauseSExternal are the RISC-V privileged-spec
// interrupt codes (the low bits of scause once the top INTC_MASK bit
// marks it as an interrupt rather than an exception).
const (
	scauseSTimer    = 5
	scauseSExternal = 9
)

var (
	timerHandler  cell.BootOnceCell[Handler]
	externalTable = sync.NewSpinNoIrq([config.MaxExternalIRQ]Handler{})
)

// RegisterHandler installs handler for cause (spec.md §4.12
// "register_handler"): the timer slot is write-once, succeeding only the
// first time it is called; an external slot fails if already taken.
// Returns false on any failure to install.
func RegisterHandler(cause uint64, handler Handler) bool {
	code := cause &^ config.INTCMask
	if cause&config.INTCMask != 0 && code == scauseSTimer {
		return timerHandler.Init(handler)
	}

	slot := code
	if slot >= config.MaxExternalIRQ {
		return false
	}
	tok := externalTable.Lock()
	defer tok.Unlock()
	if tok.Get()[slot] != nil {
		return false
	}
	tok.Get()[slot] = handler
	return true
}

// DispatchIRQ routes a trapped interrupt to its handler (spec.md §4.12
// "dispatch_irq"). External dispatch always targets slot 0 since this
// kernel does not parse the PLIC's claim/complete registers to learn
// which source actually fired — the one registered external handler
// covers every external interrupt until that is implemented. Any other
// cause is a bug in the trap dispatcher that routed here and panics.
func DispatchIRQ(cause uint64) {
	code := cause &^ config.INTCMask
	if cause&config.INTCMask == 0 {
		panic("irq: dispatch_irq called with a non-interrupt cause")
	}

	switch code {
	case scauseSTimer:
		if timerHandler.IsInit() {
			(*timerHandler.Get())(cause)
		}
	case scauseSExternal:
		tok := externalTable.Lock()
		h := tok.Get()[0]
		tok.Unlock()
		if h != nil {
			h(cause)
		}
	default:
		panic("irq: dispatch_irq: unrecognised interrupt cause")
	}
}

// Init installs the periodic timer handler and arms the first interrupt
// (spec.md §4.12 "Timer handler at init"). Supervisor interrupts remain
// masked until the caller (kernel/boot, after device/scheduler init)
// calls cpu.EnableInterrupts.
func Init() {
	RegisterHandler(config.INTCMask|scauseSTimer, timerTick)
	rearm()
}

// timerTick performs only rearm and bookkeeping (spec.md §9 "Timer
// handler re-entrancy"): it sets need_resched via SchedulerTimerTick, but
// the actual resched is deferred to the interrupted task's next
// preempt-enable, once its preempt-disable count returns to zero.
func timerTick(uint64) {
	rearm()
	sched.TickTimeouts()
	sched.SchedulerTimerTick()
}

func rearm() {
	cpu.SBISetTimer(cpu.ReadTime() + config.PeriodicIntervalNanos/config.NanosPerTick)
}
