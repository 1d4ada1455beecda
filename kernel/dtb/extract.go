package dtb

import (
	"encoding/binary"

	"rvkernel/kernel/mem"
	"rvkernel/kernel/mem/memmap"
)

// MemoryRegions walks t and returns the reg windows of every node whose
// device_type property is "memory" (spec.md §6: the boot sequence needs
// the extent of free physical memory from the DTB).
func (t *Tree) MemoryRegions() []memmap.MMIORegion {
	var out []memmap.MMIORegion
	t.Root.walk(func(n *Node) {
		dt, ok := n.Prop("device_type")
		if !ok || !cstringEquals(dt, "memory") {
			return
		}
		out = append(out, regPairs(n)...)
	})
	return out
}

// MMIODevices walks t and returns the reg windows of every node whose
// compatible property lists "virtio,mmio" (spec.md §6).
func (t *Tree) MMIODevices() []memmap.MMIORegion {
	var out []memmap.MMIORegion
	t.Root.walk(func(n *Node) {
		compat, ok := n.Prop("compatible")
		if !ok || !compatListContains(compat, "virtio,mmio") {
			return
		}
		out = append(out, regPairs(n)...)
	})
	return out
}

func (n *Node) walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.walk(visit)
	}
}

func cstringEquals(value []byte, want string) bool {
	for i, b := range value {
		if b == 0 {
			return string(value[:i]) == want
		}
	}
	return string(value) == want
}

// compatListContains scans a NUL-separated "compatible" value for want.
func compatListContains(value []byte, want string) bool {
	start := 0
	for i, b := range value {
		if b == 0 {
			if string(value[start:i]) == want {
				return true
			}
			start = i + 1
		}
	}
	return start < len(value) && string(value[start:]) == want
}

// regPairs decodes a node's "reg" property into (addr, size) windows using
// its effective #address-cells/#size-cells (spec.md §6's
// "#address-cells=#size-cells=2").
func regPairs(n *Node) []memmap.MMIORegion {
	reg, ok := n.Prop("reg")
	if !ok || n.AddrCells == 0 {
		return nil
	}
	cellBytes := (n.AddrCells + n.SizeCells) * 4
	if cellBytes == 0 {
		return nil
	}

	var out []memmap.MMIORegion
	for off := 0; off+cellBytes <= len(reg); off += cellBytes {
		addr := readCells(reg[off:off+n.AddrCells*4], n.AddrCells)
		size := readCells(reg[off+n.AddrCells*4:off+cellBytes], n.SizeCells)
		out = append(out, memmap.MMIORegion{PAddr: uintptr(addr), Size: mem.Size(size)})
	}
	return out
}

func readCells(b []byte, cells int) uint64 {
	var v uint64
	for i := 0; i < cells && i*4+4 <= len(b); i++ {
		v = v<<32 | uint64(binary.BigEndian.Uint32(b[i*4:i*4+4]))
	}
	return v
}
