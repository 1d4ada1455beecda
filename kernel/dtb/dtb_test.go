package dtb

import (
	"reflect"
	"testing"

	"rvkernel/kernel/mem"
)

func be32Bytes(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func be64Bytes(v uint64) []byte {
	return append(be32Bytes(uint32(v>>32)), be32Bytes(uint32(v))...)
}

// sampleTree mirrors the riscv-virtio synthetic layout
// original_source/axdtb/tests/test_dtb.rs exercises: a root with
// #address-cells=#size-cells=2, a memory node, and a virtio-mmio device
// under /soc.
func sampleTree() *Tree {
	memNode := &Node{
		Name:      "memory@80000000",
		AddrCells: 2,
		SizeCells: 2,
		Props: []Prop{
			{Name: "device_type", Value: append([]byte("memory"), 0)},
			{Name: "reg", Value: append(be64Bytes(0x8000_0000), be64Bytes(0x8000_0000)...)},
		},
	}
	virtio := &Node{
		Name:      "virtio_mmio@10001000",
		AddrCells: 2,
		SizeCells: 2,
		Props: []Prop{
			{Name: "compatible", Value: append([]byte("virtio,mmio"), 0)},
			{Name: "reg", Value: append(be64Bytes(0x1000_1000), be64Bytes(0x1000)...)},
		},
	}
	soc := &Node{
		Name:      "soc",
		AddrCells: 2,
		SizeCells: 2,
		Props: []Prop{
			{Name: "compatible", Value: append([]byte("simple-bus"), 0)},
		},
		Children: []*Node{virtio},
	}
	root := &Node{
		Name:      "",
		AddrCells: 2,
		SizeCells: 2,
		Props: []Prop{
			{Name: "#address-cells", Value: be32Bytes(2)},
			{Name: "#size-cells", Value: be32Bytes(2)},
			{Name: "compatible", Value: append([]byte("riscv-virtio"), 0)},
		},
		Children: []*Node{memNode, soc},
	}
	return &Tree{Root: root}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	want := sampleTree()
	buf := Serialize(want)

	got, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", want, got)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := Serialize(sampleTree())
	buf[0] = 0
	if _, err := Parse(buf); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestMemoryRegions(t *testing.T) {
	tr := sampleTree()
	regions := tr.MemoryRegions()
	if len(regions) != 1 {
		t.Fatalf("expected 1 memory region, got %d", len(regions))
	}
	if regions[0].PAddr != 0x8000_0000 || regions[0].Size != mem.Size(0x8000_0000) {
		t.Fatalf("unexpected memory region: %+v", regions[0])
	}
}

func TestMMIODevices(t *testing.T) {
	tr := sampleTree()
	devices := tr.MMIODevices()
	if len(devices) != 1 {
		t.Fatalf("expected 1 virtio-mmio device, got %d", len(devices))
	}
	if devices[0].PAddr != 0x1000_1000 || devices[0].Size != mem.Size(0x1000) {
		t.Fatalf("unexpected mmio device: %+v", devices[0])
	}
}
