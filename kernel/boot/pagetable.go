package boot

import (
	"rvkernel/kernel/cell"
	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/alloc"
	"rvkernel/kernel/mem/memmap"
	"rvkernel/kernel/mem/paging"
)

// kernelPageTable is the one-shot cell the final kernel page table is
// installed into (spec.md §4.6: "store in a one-shot cell"), kept around
// so a future re-activation (e.g. after a secondary hart comes up) only
// needs to re-read satp rather than rebuild the table.
var kernelPageTable cell.BootOnceCell[*paging.PageTable]

// allocTablePage services paging.New/Map's AllocPage requests from the
// global allocator façade, which by the time buildKernelPageTable runs is
// still in its early-bump phase (spec.md §4.5 "Phase transition" hasn't
// happened yet — page-table construction happens before it, since the
// table itself must cover the region the bitmap allocator is about to
// take ownership of).
func allocTablePage() (uintptr, error) {
	addr, err := alloc.Alloc(alloc.Layout{Size: mem.PageSize, Align: uintptr(mem.PageSize)})
	if err != nil {
		return 0, paging.ErrNoMemory
	}
	return addr, nil
}

// pageFlags translates a memmap.Flag permission set into the paging.Flag
// bits Map needs, always adding Global (spec.md §4.6: this is a
// single-address-space kernel, so every mapping it ever installs is
// global) and the Accessed/Dirty bits Sv39 hardware would otherwise have
// to set on first use.
func pageFlags(f memmap.Flag) paging.Flag {
	flags := paging.FlagValid | paging.FlagGlobal | paging.FlagAccessed | paging.FlagDirty
	if f&memmap.FlagRead != 0 {
		flags |= paging.FlagRead
	}
	if f&memmap.FlagWrite != 0 {
		flags |= paging.FlagWrite
	}
	if f&memmap.FlagExecute != 0 {
		flags |= paging.FlagExecute
	}
	return flags
}

// mapBoth installs both the identity mapping and its higher-half
// counterpart for one region, the same dual mapping §4.6 describes for
// the boot page table, carried forward to the final kernel table so code
// and data stay reachable exactly as the boot sequence left them.
func mapBoth(pt *paging.PageTable, r memmap.MemRegion) error {
	flags := pageFlags(r.Flags)
	if err := pt.Map(r.PAddr, r.PAddr, r.Size, mem.SizeLeaf2M, flags); err != nil {
		return err
	}
	return pt.Map(r.PAddr+mem.PhysVirtOffset, r.PAddr, r.Size, mem.SizeLeaf2M, flags)
}

// buildKernelPageTable constructs the table covering {kernel image
// regions, free physical memory, MMIO regions} (spec.md §4.6 "Kernel page
// table") and activates it.
func buildKernelPageTable(physMemEnd uintptr, mmio []memmap.MMIORegion) error {
	pt, err := paging.New(allocTablePage)
	if err != nil {
		return err
	}

	var mapErr error
	visit := func(r memmap.MemRegion) bool {
		if err := mapBoth(pt, r); err != nil {
			mapErr = err
			return false
		}
		return true
	}

	memmap.ImageRegions(visit)
	if mapErr != nil {
		return mapErr
	}
	memmap.FreeRegions(physMemEnd, visit)
	if mapErr != nil {
		return mapErr
	}
	memmap.MMIORegions(mmio, visit)
	if mapErr != nil {
		return mapErr
	}

	if !kernelPageTable.Init(pt) {
		return paging.ErrNoMemory
	}
	pt.Activate()
	return nil
}
