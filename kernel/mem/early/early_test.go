package early

import "testing"

import "rvkernel/kernel/mem"

func TestEarlyAllocatorBytes(t *testing.T) {
	const base = uintptr(0x1000)
	var a Allocator
	a.Init(base, 4096)

	p1, err := a.Alloc(Layout{Size: 2, Align: 2})
	if err != nil || p1 != base {
		t.Fatalf("expected %x, got %x (err=%v)", base, p1, err)
	}
	if a.BytesUsed() != 2 {
		t.Fatalf("expected used=2, got %d", a.BytesUsed())
	}

	p2, err := a.Alloc(Layout{Size: 4, Align: 4})
	if err != nil || p2 != base+4 {
		t.Fatalf("expected %x, got %x (err=%v)", base+4, p2, err)
	}
	if a.BytesUsed() != 8 {
		t.Fatalf("expected used=8, got %d", a.BytesUsed())
	}

	if err := a.Dealloc(p1, Layout{Size: 2, Align: 2}); err != nil {
		t.Fatal(err)
	}
	if err := a.Dealloc(p2, Layout{Size: 4, Align: 4}); err != nil {
		t.Fatal(err)
	}

	_, bytesPos, _, _ := a.Bounds()
	if bytesPos != base {
		t.Fatalf("expected bulk reclaim to reset bytesPos to %x, got %x", base, bytesPos)
	}
	if a.Available() != 4096 {
		t.Fatalf("expected available=4096, got %d", a.Available())
	}
}

func TestEarlyAllocatorPages(t *testing.T) {
	const pageSize = uintptr(mem.PageSize)
	base := uintptr(0x10000)
	end := base + 16*pageSize
	var a Allocator
	a.Init(base, mem.Size(16*pageSize))

	p1, err := a.Alloc(Layout{Size: mem.PageSize, Align: pageSize})
	if err != nil || p1 != end-pageSize {
		t.Fatalf("expected %x, got %x (err=%v)", end-pageSize, p1, err)
	}
	if a.PagesUsed() != 1 {
		t.Fatalf("expected pages used=1, got %d", a.PagesUsed())
	}

	p2, err := a.Alloc(Layout{Size: 2 * mem.PageSize, Align: pageSize})
	if err != nil || p2 != end-3*pageSize {
		t.Fatalf("expected %x, got %x (err=%v)", end-3*pageSize, p2, err)
	}
	if a.PagesUsed() != 3 {
		t.Fatalf("expected pages used=3, got %d", a.PagesUsed())
	}
}

func TestEarlyAllocatorBoundsInvariant(t *testing.T) {
	var a Allocator
	a.Init(0x1000, 4096)

	for i := 0; i < 10; i++ {
		if _, err := a.Alloc(Layout{Size: 8, Align: 8}); err != nil {
			t.Fatal(err)
		}
		if _, err := a.Alloc(Layout{Size: mem.PageSize, Align: uintptr(mem.PageSize)}); err != nil {
			break
		}
		start, bytesPos, pagesPos, end := a.Bounds()
		if !(start <= bytesPos && bytesPos <= pagesPos && pagesPos <= end) {
			t.Fatalf("invariant violated: start=%x bytesPos=%x pagesPos=%x end=%x", start, bytesPos, pagesPos, end)
		}
	}
}

func TestEarlyAllocatorDisable(t *testing.T) {
	var a Allocator
	a.Init(0x1000, 4096)
	a.Disable()

	if _, err := a.Alloc(Layout{Size: 8, Align: 8}); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestEarlyAllocatorPageRequestMisaligned(t *testing.T) {
	var a Allocator
	a.Init(0x1000, 4096)
	if _, err := a.Alloc(Layout{Size: mem.PageSize, Align: 8}); err != ErrInvalidParam {
		t.Fatalf("expected ErrInvalidParam, got %v", err)
	}
}
