// Package alloc implements the process-wide global allocator façade
// (spec.md §4.5): it multiplexes allocation requests across the early bump
// allocator and the bitmap-page/buddy-byte final allocators, and owns the
// one-way phase transition between them. Grounded on gopher-os's own
// allocator entry point (kernel/mem/pmm/allocator.Init, which likewise
// hands off from an early bootmem allocator to the steady-state bitmap
// allocator) and on kernel/sync's SpinNoIrq for protecting the shared
// state.
package alloc

import (
	"rvkernel/kernel/config"
	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/bitmapalloc"
	"rvkernel/kernel/mem/buddyalloc"
	"rvkernel/kernel/mem/early"
	"rvkernel/kernel/sync"
)

// Error enumerates the façade's failure modes.
type Error string

const ErrNoMemory Error = "no_memory"

func (e Error) Error() string { return string(e) }

type state struct {
	early      early.Allocator
	pages      bitmapalloc.Allocator
	bytes      buddyalloc.Heap
	finalized  bool
	pagesAlloc func(n uint64) (uintptr, error)
}

var global = sync.NewSpinNoIrq(state{})

// Init seeds the early allocator over [start, start+size), the slab that
// bridges boot and steady state (spec.md §4.4).
func Init(start uintptr, size mem.Size) {
	tok := global.Lock()
	defer tok.Unlock()
	tok.Get().early.Init(start, size)
}

// Layout mirrors the one piece of information every allocation needs.
type Layout struct {
	Size  mem.Size
	Align uintptr
}

func (l Layout) isPageRequest() bool {
	return uint64(l.Size)%uint64(mem.PageSize) == 0 && l.Align == uintptr(mem.PageSize)
}

// Alloc routes the request to the appropriate back-end based on the
// size/align test and the current phase (spec.md §4.5 routing rules).
func Alloc(l Layout) (uintptr, error) {
	tok := global.Lock()
	defer tok.Unlock()
	st := tok.Get()

	if l.isPageRequest() {
		if st.finalized {
			addr, err := st.pages.AllocContiguous(uint64(l.Size)/uint64(mem.PageSize), 0)
			if err != nil {
				return 0, ErrNoMemory
			}
			return addr, nil
		}
		addr, err := st.early.Alloc(early.Layout{Size: l.Size, Align: l.Align})
		if err != nil {
			return 0, ErrNoMemory
		}
		return addr, nil
	}

	if st.finalized {
		return allocByteFinalized(st, l)
	}
	addr, err := st.early.Alloc(early.Layout{Size: l.Size, Align: l.Align})
	if err != nil {
		return 0, ErrNoMemory
	}
	return addr, nil
}

// allocByteFinalized serves a byte request from the buddy heap, expanding
// it on exhaustion (spec.md §4.5 "Buddy expansion").
func allocByteFinalized(st *state, l Layout) (uintptr, error) {
	for {
		addr, err := st.bytes.Alloc(uintptr(l.Size), l.Align)
		if err == nil {
			return addr, nil
		}

		extra := st.bytes.Total()
		if want := uintptr(l.Size); want > extra {
			extra = want
		}
		extra = nextPow2(extra)
		if extra < uintptr(mem.PageSize) {
			extra = uintptr(mem.PageSize)
		}

		pageCount := uint64(mem.AlignUp(extra, uintptr(mem.PageSize))) / uint64(mem.PageSize)
		region, err := st.pages.AllocContiguous(pageCount, 0)
		if err != nil {
			// The host's allocation-error hook: nothing left to try.
			panic("alloc: buddy heap exhausted and page allocator cannot extend it")
		}
		st.bytes.AddRegion(region, region+uintptr(pageCount)*uintptr(mem.PageSize))
	}
}

func nextPow2(v uintptr) uintptr {
	if v == 0 {
		return 1
	}
	p := uintptr(1)
	for p < v {
		p <<= 1
	}
	return p
}

// Dealloc routes by the same size/align test used by Alloc (spec.md §4.5
// "Deallocation").
func Dealloc(addr uintptr, l Layout) {
	tok := global.Lock()
	defer tok.Unlock()
	st := tok.Get()

	if l.isPageRequest() {
		if st.finalized {
			st.pages.Free(addr, uint64(l.Size)/uint64(mem.PageSize))
			return
		}
		_ = st.early.Dealloc(addr, early.Layout{Size: l.Size, Align: l.Align})
		return
	}

	if st.finalized {
		st.bytes.Dealloc(addr, uintptr(l.Size), l.Align)
		return
	}
	_ = st.early.Dealloc(addr, early.Layout{Size: l.Size, Align: l.Align})
}

// FinalInit performs the one-way phase transition from the early allocator
// to the bitmap-page + buddy-byte back-ends (spec.md §4.5 "Phase
// transition").
func FinalInit(start uintptr, size mem.Size) error {
	tok := global.Lock()
	defer tok.Unlock()
	st := tok.Get()

	st.pages.Init(start, size)

	chunk, err := st.pages.AllocContiguous(uint64(config.BuddySeedChunk)/uint64(mem.PageSize), 0)
	if err != nil {
		return ErrNoMemory
	}
	st.bytes.Init(chunk, config.BuddySeedChunk)

	st.early.Disable()
	st.finalized = true
	return nil
}

// Finalized reports whether the phase transition has occurred.
func Finalized() bool {
	tok := global.Lock()
	defer tok.Unlock()
	return tok.Get().finalized
}
