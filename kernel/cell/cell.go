// Package cell provides the two single-writer cell shapes boot-time
// globals need (spec.md §4.3): a write-once cell and a checked
// mutable-borrow cell. Both are declared safe for concurrent use under the
// rule that, before the MMU and scheduler are set up, there is only one
// executing context — exactly the assumption original_source's axsync
// BootOnceCell documents.
package cell

import "sync/atomic"

// BootOnceCell is a write-once cell: Init succeeds only the first time,
// Get panics if the cell was never initialised.
type BootOnceCell[T any] struct {
	init  atomic.Bool
	value T
}

// Init sets the cell's value. Returns false if the cell was already
// initialised (the value is left untouched in that case).
func (c *BootOnceCell[T]) Init(v T) bool {
	if !c.init.CompareAndSwap(false, true) {
		return false
	}
	c.value = v
	return true
}

// IsInit reports whether Init has succeeded.
func (c *BootOnceCell[T]) IsInit() bool {
	return c.init.Load()
}

// Get returns the cell's value, panicking if it was never initialised.
func (c *BootOnceCell[T]) Get() *T {
	if !c.init.Load() {
		panic("boot_once_cell: read before init")
	}
	return &c.value
}

// BootCell is a mutable-borrow-at-will cell for boot-phase exclusive
// access. Borrow checks at runtime that no two borrows overlap; this
// catches reentrancy bugs (e.g. a boot routine that recursively touches
// the same global) that would otherwise corrupt state silently.
type BootCell[T any] struct {
	borrowed atomic.Bool
	value    T
}

// NewBootCell wraps v.
func NewBootCell[T any](v T) *BootCell[T] {
	return &BootCell[T]{value: v}
}

// BootCellGuard is the handle returned by Borrow; call Release exactly
// once when done.
type BootCellGuard[T any] struct {
	cell *BootCell[T]
}

// Borrow grants exclusive access to the cell's value, panicking if it is
// already borrowed.
func (c *BootCell[T]) Borrow() *BootCellGuard[T] {
	if !c.borrowed.CompareAndSwap(false, true) {
		panic("boot_cell: already borrowed")
	}
	return &BootCellGuard[T]{cell: c}
}

// Get returns a pointer to the borrowed value.
func (g *BootCellGuard[T]) Get() *T {
	return &g.cell.value
}

// Release ends the borrow.
func (g *BootCellGuard[T]) Release() {
	g.cell.borrowed.Store(false)
}
