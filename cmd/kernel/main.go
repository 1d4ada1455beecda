// Command kernel is the rt0 trampoline: the only Go symbol the
// architecture's assembly support file calls into after _start has zeroed
// .bss, built and activated the boot page table, and jumped to the higher
// half (spec.md §4.8). Grounded on gopher-os's boot.go, the only other
// top-level main-as-trampoline in the corpus.
package main

import "rvkernel/kernel/boot"

// main exists only so the Go compiler doesn't treat boot.Main as dead
// code it can strip; the real entry is _start's assembly, which loads a0
// (hartid) and a1 (the DTB physical address) into registers and calls
// boot.Main directly — the same way gopher-os's rt0 calls into
// kernel.Kmain with the multiboot pointer it received in a register,
// never through this function.
func main() {
	boot.Main(0, 0)
}
