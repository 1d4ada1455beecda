// Package memmap enumerates the kernel-image and free/MMIO physical memory
// regions used to build the final kernel page table (spec.md §3, §4.7).
package memmap

import "rvkernel/kernel/mem"

// Flag is a bit in a MemRegion's permission/kind bitset.
type Flag uint32

const (
	FlagRead Flag = 1 << iota
	FlagWrite
	FlagExecute
	FlagDevice
	FlagUncached
	FlagReserved
	FlagFree
)

// MemRegion describes one contiguous physical memory region. Immutable
// once produced: derived either from linker symbols (the kernel image) or
// from the device tree (free memory, MMIO).
type MemRegion struct {
	PAddr uintptr
	Size  mem.Size
	Flags Flag
	Name  string
}

// End returns the first address past the region.
func (r MemRegion) End() uintptr {
	return r.PAddr + uintptr(r.Size)
}

// Visitor is called once per region produced by a region source. Returning
// false stops the enumeration early.
type Visitor func(MemRegion) bool
