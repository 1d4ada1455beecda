package klog

import (
	"rvkernel/kernel"
	"rvkernel/kernel/cpu"
)

var errUnknownPanic = &kernel.Error{Module: "rt", Message: "unknown cause"}

// haltFn is mocked by tests, mirroring the teacher's cpuHaltFn idiom in
// kernel/panic.go.
var haltFn = cpu.Halt

// FrameDumper is implemented by whatever can render its own state when a
// panic occurs while handling it (currently: a trap frame).
type FrameDumper interface {
	Dump()
}

// Panic prints the supplied error (and, if non-nil, the offending trap
// frame) to the console and halts the hart. Panic never returns.
func Panic(e interface{}, frame FrameDumper) {
	var err *kernel.Error

	switch t := e.(type) {
	case *kernel.Error:
		err = t
	case string:
		errUnknownPanic.Message = t
		err = errUnknownPanic
	case error:
		errUnknownPanic.Message = t.Error()
		err = errUnknownPanic
	default:
		err = errUnknownPanic
	}

	Printf("\n-----------------------------------\n")
	Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	if frame != nil {
		frame.Dump()
	}
	Printf("*** kernel panic: system halted ***\n")
	Printf("-----------------------------------\n")

	haltFn()
}
