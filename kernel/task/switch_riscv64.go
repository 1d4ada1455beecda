package task

// Switch saves prev's callee-saved registers and stack pointer into prev
// and loads next's from next, returning only when prev is resumed by some
// future Switch call (spec.md §4.8 "Context switch"). No Go body: this is
// implemented in the architecture's assembly support file, exactly like
// the CSR primitives declared in kernel/cpu.
func Switch(prev, next *Context)
