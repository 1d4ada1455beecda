package boot

import (
	"encoding/binary"
	"unsafe"

	"rvkernel/kernel/dtb"
	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/memmap"
)

// parseDTB turns the physical address SBI handed _start in a1 (spec.md §6
// boot contract) into an addressable slice and parses it. The header's
// own totalsize field (offset 4, big-endian per spec.md §6's FDT v17
// layout) bounds the slice — there is no other way to know how much
// memory the blob occupies before reading its header.
func parseDTB(addr uintptr) (*dtb.Tree, error) {
	header := unsafe.Slice((*byte)(unsafe.Pointer(addr)), 24)
	totalSize := binary.BigEndian.Uint32(header[4:8])
	buf := unsafe.Slice((*byte)(unsafe.Pointer(addr)), totalSize)
	return dtb.Parse(buf)
}

// memEnd returns the end of the highest "memory" region the DTB reports,
// the physical-memory-end input memmap.FreeRegions needs (spec.md §4.7).
func memEnd(tree *dtb.Tree) uintptr {
	var end uintptr
	for _, r := range tree.MemoryRegions() {
		if e := r.PAddr + uintptr(r.Size); e > end {
			end = e
		}
	}
	return end
}

// freeRegion resolves memmap.FreeRegions's single yielded region into a
// (start, size) pair for alloc.FinalInit.
func freeRegion(physMemEnd uintptr) (uintptr, mem.Size) {
	var start uintptr
	var size mem.Size
	memmap.FreeRegions(physMemEnd, func(r memmap.MemRegion) bool {
		start, size = r.PAddr, r.Size
		return false
	})
	return start, size
}
