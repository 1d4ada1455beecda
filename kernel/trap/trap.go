package trap

import (
	"unsafe"

	"rvkernel/kernel"
	"rvkernel/kernel/config"
	"rvkernel/kernel/cpu"
	"rvkernel/kernel/irq"
	"rvkernel/kernel/klog"
	"rvkernel/kernel/mem/memmap"
)

// scauseExcBreakpoint is the RISC-V privileged-spec exception code for an
// ebreak instruction.
const scauseExcBreakpoint = 3

// Init installs the trap vector (spec.md §4.8: "The runtime entry installs
// the trap vector, then calls rust_main"). trap_vector_base is a linker
// symbol placed by the same boot linker script that places boot_page_table
// (kernel/mem/memmap), so its address needs no further arch-specific
// lookup.
func Init() {
	cpu.WriteStvec(uintptr(unsafe.Pointer(&memmap.TrapVectorBase)))
}

// readScauseFn defaults to the real CSR read; tests override it the same
// way kernel/sched's switchFn overrides task.Switch, since there is no
// real scause register outside the target hardware.
var readScauseFn = cpu.ReadScause

// Handle is invoked by the trap vector with the just-saved register frame
// (spec.md §4.8 "Trap vector"). It runs with interrupts masked — the
// vector disables them on entry — so it never itself races a nested trap.
func Handle(f *Frame) {
	cause := readScauseFn()

	if cause&config.INTCMask != 0 {
		irq.DispatchIRQ(cause)
		return
	}

	switch cause {
	case scauseExcBreakpoint:
		klog.Printf("trap: breakpoint @ %x\n", f.Epc)
		f.Epc += 2
	default:
		klog.Panic(&kernel.Error{Module: "trap", Message: "unhandled exception"}, f)
	}
}
