package paging

import (
	"unsafe"

	"testing"

	"rvkernel/kernel/mem"
)

// withDirectMemory substitutes tableAtFn with a direct (non-offset) view,
// and returns an AllocPage backed by ordinary Go memory standing in for
// physical pages, along with a restore function.
func withDirectMemory(t *testing.T) AllocPage {
	t.Helper()
	orig := tableAtFn
	tableAtFn = func(pa uintptr) *[mem.EntriesCount]entry {
		return (*[mem.EntriesCount]entry)(unsafe.Pointer(pa))
	}
	t.Cleanup(func() { tableAtFn = orig })

	// Pages are kept reachable here so they live on the heap (4 KiB objects,
	// page-aligned) for the whole test rather than on the closure's stack.
	var pages []*[mem.EntriesCount]entry
	return func() (uintptr, error) {
		page := new([mem.EntriesCount]entry)
		pages = append(pages, page)
		return uintptr(unsafe.Pointer(&page[0])), nil
	}
}

func TestPageTableSuperpageMapping(t *testing.T) {
	alloc := withDirectMemory(t)

	pt, err := New(alloc)
	if err != nil {
		t.Fatal(err)
	}

	const pa = uintptr(0x8000_0000)
	if err := pt.Map(pa, pa, mem.SizeLeaf1G, mem.SizeLeaf1G, KernelRWX); err != nil {
		t.Fatal(err)
	}
	va := pa + mem.PhysVirtOffset
	if err := pt.Map(va, pa, mem.SizeLeaf1G, mem.SizeLeaf1G, KernelRWX); err != nil {
		t.Fatal(err)
	}

	const want = uint64(0x200000ef)
	if got := pt.RootEntryRaw(2); got != want {
		t.Fatalf("index 2: expected %#x, got %#x", want, got)
	}
	if got := pt.RootEntryRaw(258); got != want {
		t.Fatalf("index 258: expected %#x, got %#x", want, got)
	}
}

func TestPageTableInteriorEntriesAreValidOnly(t *testing.T) {
	alloc := withDirectMemory(t)

	pt, err := New(alloc)
	if err != nil {
		t.Fatal(err)
	}
	if err := pt.Map(0, 0x1000, mem.SizeLeaf4K, mem.SizeLeaf4K, KernelRWX); err != nil {
		t.Fatal(err)
	}

	root := tableAtFn(pt.Root())
	idx0 := levelIndex(0, 0)
	e := root[idx0]
	if !e.HasFlags(FlagValid) {
		t.Fatal("expected interior entry to carry FlagValid")
	}
	if e.HasFlags(FlagRead | FlagWrite | FlagExecute) {
		t.Fatal("expected interior entry to carry no R/W/X flags")
	}
}

func TestPageTableMixedGranularity(t *testing.T) {
	alloc := withDirectMemory(t)

	pt, err := New(alloc)
	if err != nil {
		t.Fatal(err)
	}

	// va sits one 4 KiB page short of the next 2 MiB boundary, so the
	// prefix loop needs exactly one 4 KiB leaf before the remaining span
	// becomes 2 MiB-aligned; total then covers one prefix page plus one
	// full 2 MiB middle block, with nothing left for the tail.
	va := uintptr(mem.SizeLeaf2M) - uintptr(mem.SizeLeaf4K)
	pa := va
	total := mem.SizeLeaf2M + mem.SizeLeaf4K

	if err := pt.Map(va, pa, total, mem.SizeLeaf2M, KernelRWX); err != nil {
		t.Fatal(err)
	}

	// Walk to the 4 KiB leaf covering the misaligned prefix page and
	// confirm it resolves to pa exactly (not folded into a superpage).
	l2 := levelIndex(va, 0)
	l1 := levelIndex(va, 1)
	l2tbl := tableAtFn(pt.Root())
	interior1 := tableAtFn(l2tbl[l2].PhysAddr())
	interior2 := tableAtFn(interior1[l1].PhysAddr())
	l0 := levelIndex(va, 2)
	if got := interior2[l0].PhysAddr(); got != pa {
		t.Fatalf("expected leaf to resolve to %x, got %x", pa, got)
	}
}

func TestPageTableTooSmallFallsBackTo4K(t *testing.T) {
	alloc := withDirectMemory(t)

	pt, err := New(alloc)
	if err != nil {
		t.Fatal(err)
	}

	// total_size < leaf_size_hint must fall back to 4 KiB leaves.
	if err := pt.Map(0x1000, 0x1000, mem.SizeLeaf4K, mem.SizeLeaf1G, KernelRWX); err != nil {
		t.Fatal(err)
	}

	l2 := levelIndex(0x1000, 0)
	l1 := levelIndex(0x1000, 1)
	l0 := levelIndex(0x1000, 2)
	root := tableAtFn(pt.Root())
	interior1 := tableAtFn(root[l2].PhysAddr())
	interior2 := tableAtFn(interior1[l1].PhysAddr())
	if !interior2[l0].HasFlags(FlagValid) {
		t.Fatal("expected a 4 KiB leaf to have been installed")
	}
}
