package paging

import (
	"unsafe"

	"rvkernel/kernel"
	"rvkernel/kernel/cpu"
	"rvkernel/kernel/mem"
)

// Error enumerates the page table's failure modes.
type Error string

const ErrNoMemory Error = "no_memory"

func (e Error) Error() string { return string(e) }

// AllocPage obtains one zeroed, page-aligned physical page for a table
// node (spec.md §4.6 "alloc_table").
type AllocPage func() (uintptr, error)

// PageTable is a three-level Sv39 page table rooted at a physical page
// obtained from AllocPage.
type PageTable struct {
	root  uintptr
	alloc AllocPage
}

// New allocates the root node and returns a ready-to-use table.
func New(alloc AllocPage) (*PageTable, error) {
	root, err := alloc()
	if err != nil {
		return nil, ErrNoMemory
	}
	zeroTable(root)
	return &PageTable{root: root, alloc: alloc}, nil
}

// Root returns the physical address of the table's root node.
func (pt *PageTable) Root() uintptr { return pt.root }

// tableAtFn overlays a typed 512-entry view on a table node's physical
// address, reached through the higher-half offset mapping that covers all
// of physical memory once the kernel page table (or the boot page table)
// is active. A package variable so tests can substitute a direct,
// non-offset view over ordinary Go-allocated memory standing in for
// physical pages (mirrors gopher-os's activePDTFn/mapFn override idiom).
var tableAtFn = func(pa uintptr) *[mem.EntriesCount]entry {
	return (*[mem.EntriesCount]entry)(unsafe.Pointer(pa + mem.PhysVirtOffset))
}

// zeroTable clears a freshly allocated table node through kernel.Memset,
// the same bulk zero-fill gopher-os's mem_util.go provides, kept at the
// doubling-copy span it was already written at and now actually exercised
// from the one place this tree allocates raw pages that must start zeroed.
func zeroTable(pa uintptr) {
	t := tableAtFn(pa)
	kernel.Memset(uintptr(unsafe.Pointer(t)), 0, uintptr(len(t))*8)
}

// levelForLeaf returns the table level (0 = root) whose entry size equals
// leafSize, per spec.md §4.6's shift formula S = ASPACE_BITS -
// (L+1)*(PAGE_SHIFT-3).
func levelForLeaf(leafSize mem.Size) (int, error) {
	switch leafSize {
	case mem.SizeLeaf1G:
		return 0, nil
	case mem.SizeLeaf2M:
		return 1, nil
	case mem.SizeLeaf4K:
		return 2, nil
	default:
		return 0, ErrNoMemory
	}
}

func levelShift(level int) uint {
	return uint(mem.AspaceBits - (level+1)*(mem.PageShift-3))
}

func levelIndex(va uintptr, level int) uintptr {
	return (va >> levelShift(level)) & (mem.EntriesCount - 1)
}

// mapOne walks from the root to the level matching leafSize, allocating
// interior tables on demand, and installs a single leaf entry for pa at va.
func (pt *PageTable) mapOne(va, pa uintptr, leafSize mem.Size, flags Flag) error {
	level, err := levelForLeaf(leafSize)
	if err != nil {
		return err
	}

	tablePA := pt.root
	for l := 0; l < level; l++ {
		idx := levelIndex(va, l)
		table := tableAtFn(tablePA)
		e := &table[idx]
		if !e.HasFlags(FlagValid) {
			childPA, err := pt.alloc()
			if err != nil {
				return ErrNoMemory
			}
			zeroTable(childPA)
			e.setInterior(childPA)
		}
		tablePA = e.PhysAddr()
	}

	idx := levelIndex(va, level)
	table := tableAtFn(tablePA)
	table[idx].setLeaf(pa, flags)
	return nil
}

// Map establishes va -> pa over totalSize, preferring leafSizeHint-sized
// leaves for the aligned middle and falling back to 4 KiB leaves for any
// misaligned prefix/tail (spec.md §4.6 "map").
func (pt *PageTable) Map(va, pa uintptr, totalSize, leafSizeHint mem.Size, flags Flag) error {
	if totalSize < leafSizeHint {
		leafSizeHint = mem.SizeLeaf4K
	}

	remaining := totalSize
	curVA, curPA := va, pa

	for remaining > 0 && !mem.IsAligned(curVA, uintptr(leafSizeHint)) {
		if err := pt.mapOne(curVA, curPA, mem.SizeLeaf4K, flags); err != nil {
			return err
		}
		curVA += uintptr(mem.SizeLeaf4K)
		curPA += uintptr(mem.SizeLeaf4K)
		remaining -= mem.SizeLeaf4K
	}

	for remaining >= leafSizeHint {
		if err := pt.mapOne(curVA, curPA, leafSizeHint, flags); err != nil {
			return err
		}
		curVA += uintptr(leafSizeHint)
		curPA += uintptr(leafSizeHint)
		remaining -= leafSizeHint
	}

	for remaining > 0 {
		if err := pt.mapOne(curVA, curPA, mem.SizeLeaf4K, flags); err != nil {
			return err
		}
		curVA += uintptr(mem.SizeLeaf4K)
		curPA += uintptr(mem.SizeLeaf4K)
		remaining -= mem.SizeLeaf4K
	}

	return nil
}

// RootEntryRaw exposes the raw value of a root-level entry, used by tests
// to check the exact (pfn<<10)|flags encoding (spec.md §8 concrete
// scenario 4) without reaching into package-private state.
func (pt *PageTable) RootEntryRaw(index int) uint64 {
	return uint64(tableAtFn(pt.root)[index])
}

// Activate installs this table's root into satp in Sv39 mode and flushes
// the TLB (spec.md §4.6 "Kernel page table").
func (pt *PageTable) Activate() {
	cpu.WriteSatp(uint64(pt.root>>mem.PageShift) | cpu.SatpModeSv39)
	cpu.FlushTLBAll()
}
