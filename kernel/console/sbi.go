package console

import "rvkernel/kernel/cpu"

// SBISink is the default Sink: one SBI ecall per byte via the legacy
// console-putchar extension. This is the external collaborator spec.md §1
// calls out as "one function, write_bytes(&[u8])" — everything past this
// file belongs to the firmware, not to this kernel.
type SBISink struct{}

func (SBISink) WriteBytes(b []byte) {
	for _, c := range b {
		cpu.SBIConsolePutchar(c)
	}
}
