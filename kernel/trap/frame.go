// Package trap implements the Go-level half of the trap vector (spec.md
// §4.8 "Trap vector"): the saved register frame type, vector installation,
// and cause-based dispatch into the breakpoint/timer/external/panic paths.
// The vector itself — spill every integer register into a Frame on the
// kernel stack, call Handle, reload and sret — is implemented in the
// architecture's assembly support file, the same split already used for
// kernel/cpu's CSR accessors and kernel/task's Switch.
package trap

// Frame is the saved integer register file captured on trap entry and
// restored on return. Grounded on original_source/axhal's TrapFrame
// (context.rs/trap.S): every caller- and callee-saved register plus the
// saved program counter, Epc, which a handler may advance (e.g. past a
// breakpoint) before the vector resumes.
type Frame struct {
	RA, GP, TP                         uint64
	T0, T1, T2                         uint64
	S0, S1                             uint64
	A0, A1, A2, A3, A4, A5, A6, A7      uint64
	S2, S3, S4, S5, S6, S7, S8, S9      uint64
	S10, S11                           uint64
	T3, T4, T5, T6                     uint64
	SP  uint64
	Epc uint64
}
