package memmap

import (
	"unsafe"

	"rvkernel/kernel/mem"
)

func addrOf(b *byte) uintptr {
	return uintptr(unsafe.Pointer(b))
}

// ImageRegions enumerates the kernel-image regions derived from linker
// symbols (spec.md §4.7): .text, .rodata, .data/.tdata/.tbss/.percpu
// (folded into one R+W region here, as this kernel has no per-cpu/TLS
// sections beyond what .data already covers on a single hart), the early
// heap seed, the boot stack and .bss.
func ImageRegions(visit Visitor) {
	regions := []MemRegion{
		{PAddr: addrOf(&Stext), Size: mem.Size(addrOf(&Etext) - addrOf(&Stext)), Flags: FlagRead | FlagExecute, Name: ".text"},
		{PAddr: addrOf(&Srodata), Size: mem.Size(addrOf(&Erodata) - addrOf(&Srodata)), Flags: FlagRead, Name: ".rodata"},
		{PAddr: addrOf(&Sdata), Size: mem.Size(addrOf(&Edata) - addrOf(&Sdata)), Flags: FlagRead | FlagWrite, Name: ".data"},
		{PAddr: EarlyHeapStart(), Size: mem.EarlyHeapSize, Flags: FlagRead | FlagWrite, Name: "early_heap"},
		{PAddr: addrOf(&BootStack), Size: mem.Size(addrOf(&BootStackTop) - addrOf(&BootStack)), Flags: FlagRead | FlagWrite, Name: "boot_stack"},
		{PAddr: addrOf(&Sbss), Size: mem.Size(addrOf(&Ebss) - addrOf(&Sbss)), Flags: FlagRead | FlagWrite, Name: ".bss"},
	}

	for _, r := range regions {
		if !visit(r) {
			return
		}
	}
}

// EarlyHeapStart returns the start of the 1 MiB early heap seed region
// that sits just below _skernel (spec.md §6).
func EarlyHeapStart() uintptr {
	return mem.EarlyHeapStart
}

// KernelImageBounds returns the [start, end) physical range occupied by
// the loaded kernel image.
func KernelImageBounds() (start, end uintptr) {
	return addrOf(&Skernel), addrOf(&Ekernel)
}

// FreeRegions enumerates the free physical memory region: from
// align_up(_ekernel, PAGE_SIZE) to the end of physical memory as reported
// by the device tree (spec.md §4.7).
func FreeRegions(physMemEnd uintptr, visit Visitor) {
	start := mem.AlignUp(addrOf(&Ekernel), uintptr(mem.PageSize))
	if start >= physMemEnd {
		return
	}
	visit(MemRegion{
		PAddr: start,
		Size:  mem.Size(physMemEnd - start),
		Flags: FlagRead | FlagWrite | FlagFree,
		Name:  "free",
	})
}

// MMIORegion is a single device-tree-reported MMIO window.
type MMIORegion struct {
	PAddr uintptr
	Size  mem.Size
}

// MMIORegions enumerates the DEVICE+RESERVED+R+W regions reported by the
// device tree.
func MMIORegions(mmio []MMIORegion, visit Visitor) {
	for _, m := range mmio {
		if !visit(MemRegion{
			PAddr: m.PAddr,
			Size:  m.Size,
			Flags: FlagDevice | FlagReserved | FlagRead | FlagWrite,
			Name:  "mmio",
		}) {
			return
		}
	}
}
