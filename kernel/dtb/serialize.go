package dtb

import "encoding/binary"

// Serialize produces a flattened device tree byte stream for t, the
// inverse of Parse, used to exercise the round-trip property spec.md §8
// requires ("parse(serialize(t)) == t for synthetic device trees"). It
// only emits what this parser reads back (a 24-byte header, the struct
// block and the strings block; no memory reservation block); it is not a
// general-purpose FDT writer.
func Serialize(t *Tree) []byte {
	var strs []byte
	strOff := map[string]uint32{}
	intern := func(name string) uint32 {
		if off, ok := strOff[name]; ok {
			return off
		}
		off := uint32(len(strs))
		strs = append(strs, []byte(name)...)
		strs = append(strs, 0)
		strOff[name] = off
		return off
	}

	var structBlock []byte
	put32 := func(v uint32) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		structBlock = append(structBlock, b[:]...)
	}
	padTo4 := func() {
		for len(structBlock)%4 != 0 {
			structBlock = append(structBlock, 0)
		}
	}

	var emit func(n *Node)
	emit = func(n *Node) {
		put32(tagBeginNode)
		structBlock = append(structBlock, []byte(n.Name)...)
		structBlock = append(structBlock, 0)
		padTo4()

		for _, p := range n.Props {
			put32(tagProp)
			put32(uint32(len(p.Value)))
			put32(intern(p.Name))
			structBlock = append(structBlock, p.Value...)
			padTo4()
		}

		for _, c := range n.Children {
			emit(c)
		}

		put32(tagEndNode)
	}
	emit(t.Root)
	put32(tagEnd)

	const headerSize = 24
	offStruct := uint32(headerSize)
	offStrings := offStruct + uint32(len(structBlock))
	totalSize := offStrings + uint32(len(strs))

	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[0:4], magic)
	binary.BigEndian.PutUint32(header[4:8], totalSize)
	binary.BigEndian.PutUint32(header[8:12], offStruct)
	binary.BigEndian.PutUint32(header[12:16], offStrings)
	binary.BigEndian.PutUint32(header[20:24], supportedVersion)

	out := make([]byte, 0, totalSize)
	out = append(out, header...)
	out = append(out, structBlock...)
	out = append(out, strs...)
	return out
}
