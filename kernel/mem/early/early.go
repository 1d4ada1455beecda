// Package early implements the double-ended bump allocator that bridges
// boot and steady state (spec.md §4.4, grounded on
// original_source/allocator/src/early.rs). Bytes grow up from the seed
// region's start; pages grow down from its end; the two populations never
// fragment each other because they are carved from opposite ends of the
// same slab.
package early

import "rvkernel/kernel/mem"

// Error enumerates the allocator's failure modes (spec.md §7).
type Error string

const (
	ErrInvalidParam Error = "invalid_param"
	ErrNoMemory     Error = "no_memory"
	ErrNotAllocated Error = "not_allocated"
	ErrDisabled     Error = "disabled"
	ErrNotSupported Error = "not_supported"
)

func (e Error) Error() string { return string(e) }

// Layout mirrors the one piece of information every allocation needs:
// size and alignment.
type Layout struct {
	Size  mem.Size
	Align uintptr
}

// Allocator is the early bump allocator. Zero value is not usable; call
// Init first.
type Allocator struct {
	start, end         uintptr
	bytesPos, pagesPos uintptr
	count              int
	disabled           bool
}

// Init sets up the allocator's bounds over [start, start+size).
func (a *Allocator) Init(start uintptr, size mem.Size) {
	a.start = start
	a.end = start + uintptr(size)
	a.bytesPos = start
	a.pagesPos = a.end
	a.count = 0
	a.disabled = false
}

// BytesUsed, PagesUsed and Available expose the allocator's bookkeeping
// for diagnostics and tests (spec.md §8 concrete scenarios 1-2).
func (a *Allocator) BytesUsed() mem.Size { return mem.Size(a.bytesPos - a.start) }
func (a *Allocator) PagesUsed() mem.Size { return mem.Size(a.end-a.pagesPos) / mem.PageSize }
func (a *Allocator) Available() mem.Size { return mem.Size(a.pagesPos - a.bytesPos) }
func (a *Allocator) LiveByteCount() int  { return a.count }

// Alloc carves size bytes aligned to align from the appropriate half of
// the slab (spec.md §4.4): requests whose size is a multiple of the page
// size come from the page side and must be page-aligned (any other
// alignment fails with ErrInvalidParam); everything else comes from the
// byte side.
func (a *Allocator) Alloc(l Layout) (uintptr, error) {
	if a.disabled {
		return 0, ErrDisabled
	}
	if l.Size == 0 || l.Align == 0 || (l.Align&(l.Align-1)) != 0 {
		return 0, ErrInvalidParam
	}

	if uint64(l.Size)%uint64(mem.PageSize) == 0 {
		if l.Align != uintptr(mem.PageSize) {
			return 0, ErrInvalidParam
		}
		newPos := mem.AlignDown(a.pagesPos-uintptr(l.Size), l.Align)
		if newPos <= a.bytesPos || newPos > a.pagesPos {
			return 0, ErrNoMemory
		}
		a.pagesPos = newPos
		return newPos, nil
	}

	start := mem.AlignUp(a.bytesPos, l.Align)
	end := start + uintptr(l.Size)
	if end > a.pagesPos || end < start {
		return 0, ErrNoMemory
	}
	a.bytesPos = end
	a.count++
	return start, nil
}

// Dealloc releases a previously allocated byte-side pointer. Page-side
// allocations are never freed (spec.md §4.4). When the live byte count
// returns to zero, the byte half is bulk-reclaimed in one step.
func (a *Allocator) Dealloc(addr uintptr, l Layout) error {
	if uint64(l.Size)%uint64(mem.PageSize) == 0 && l.Align == uintptr(mem.PageSize) {
		// pages are never freed; nothing to do.
		return nil
	}
	if a.count == 0 {
		return ErrNotAllocated
	}
	a.count--
	if a.count == 0 {
		a.bytesPos = a.start
	}
	return nil
}

// AddMemory extends the slab with an additional region. Declared to match
// the original allocator's surface but deliberately unimplemented: no
// caller in this kernel ever grows the early allocator after Init
// (spec.md's Open Questions).
func (a *Allocator) AddMemory(start uintptr, size mem.Size) error {
	return ErrNotSupported
}

// Disable latches the allocator so all subsequent Alloc calls fail; used
// during the phase transition to the final allocators (spec.md §4.5).
func (a *Allocator) Disable() {
	a.disabled = true
}

// Disabled reports whether Disable has been called.
func (a *Allocator) Disabled() bool { return a.disabled }

// Bounds returns the allocator's current internal pointers, useful for
// invariant checks: start <= bytesPos <= pagesPos <= end.
func (a *Allocator) Bounds() (start, bytesPos, pagesPos, end uintptr) {
	return a.start, a.bytesPos, a.pagesPos, a.end
}
