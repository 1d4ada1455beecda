// Package boot implements the Go-level half of the runtime entry sequence
// _start's assembly hands off to (spec.md §2's control-flow summary and
// §4.8's "The runtime entry installs the trap vector, then calls
// rust_main"): parse the DTB, build and activate the final kernel page
// table, flip the global allocator to its steady-state back-ends, bring
// up the scheduler, and arm the timer. Grounded on gopher-os's
// kernel.Kmain — the only other Go-visible rt0 trampoline in the corpus —
// generalised from "init terminal, print banner" to this kernel's fuller
// boot sequence.
package boot

import (
	"rvkernel/kernel"
	"rvkernel/kernel/config"
	"rvkernel/kernel/console"
	"rvkernel/kernel/cpu"
	"rvkernel/kernel/irq"
	"rvkernel/kernel/klog"
	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/alloc"
	"rvkernel/kernel/mem/memmap"
	"rvkernel/kernel/sched"
	"rvkernel/kernel/task"
	"rvkernel/kernel/trap"
)

// Main is rust_main's Go-level counterpart: the single entry point
// _start's assembly jumps to once the boot page table is active and the
// hart is running in the higher half (spec.md §1: "a single
// main(hartid, dtb) function").
//
//go:noinline
func Main(hartid uint64, dtbAddr uintptr) {
	console.SetSink(console.SBISink{})
	klog.Printf("booting hart %d, dtb @ %x\n", hartid, uint64(dtbAddr))

	alloc.Init(memmap.EarlyHeapStart(), mem.EarlyHeapSize)

	tree, err := parseDTB(dtbAddr)
	if err != nil {
		klog.Panic(&kernel.Error{Module: "boot", Message: "dtb parse failed: " + err.Error()}, nil)
	}

	physMemEnd := memEnd(tree)
	mmio := tree.MMIODevices()

	if err := buildKernelPageTable(physMemEnd, mmio); err != nil {
		klog.Panic(&kernel.Error{Module: "boot", Message: "kernel page table build failed"}, nil)
	}

	freeStart, freeSize := freeRegion(physMemEnd)
	if err := alloc.FinalInit(freeStart, freeSize); err != nil {
		klog.Panic(&kernel.Error{Module: "boot", Message: "allocator phase transition failed"}, nil)
	}

	main := task.NewInit("main")
	if err := sched.Init(main, config.TaskStackSize); err != nil {
		klog.Panic(&kernel.Error{Module: "boot", Message: "scheduler init failed"}, nil)
	}
	if err := sched.StartGC(config.TaskStackSize); err != nil {
		klog.Panic(&kernel.Error{Module: "boot", Message: "gc task spawn failed"}, nil)
	}

	trap.Init()
	irq.Init()
	cpu.EnableInterrupts()

	klog.Printf("kernel ready\n")

	// main never has application work of its own beyond bringing the
	// kernel up; exiting it shuts the machine down (spec.md §2: "call
	// main → on exit, shutdown").
	sched.ExitCurrent(0)
}
