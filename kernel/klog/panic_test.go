package klog

import (
	"testing"

	"rvkernel/kernel"
	"rvkernel/kernel/console"
)

type bufSink struct{ buf []byte }

func (s *bufSink) WriteBytes(b []byte) { s.buf = append(s.buf, b...) }

type fakeFrame struct{ dumped bool }

func (f *fakeFrame) Dump() { f.dumped = true }

func TestPanicWithErrorHaltsAndDumpsFrame(t *testing.T) {
	sink := &bufSink{}
	console.SetSink(sink)
	defer console.SetSink(nil)

	var halted bool
	orig := haltFn
	haltFn = func() { halted = true }
	defer func() { haltFn = orig }()

	frame := &fakeFrame{}
	Panic(&kernel.Error{Module: "test", Message: "panic test"}, frame)

	want := "\n-----------------------------------\n[test] unrecoverable error: panic test\n*** kernel panic: system halted ***\n-----------------------------------\n"
	if got := string(sink.buf); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
	if !halted {
		t.Fatal("expected Panic to call haltFn")
	}
	if !frame.dumped {
		t.Fatal("expected Panic to call frame.Dump")
	}
}

func TestPanicWithoutFrameSkipsDump(t *testing.T) {
	sink := &bufSink{}
	console.SetSink(sink)
	defer console.SetSink(nil)

	var halted bool
	orig := haltFn
	haltFn = func() { halted = true }
	defer func() { haltFn = orig }()

	Panic("boom", nil)

	want := "\n-----------------------------------\n[rt] unrecoverable error: boom\n*** kernel panic: system halted ***\n-----------------------------------\n"
	if got := string(sink.buf); got != want {
		t.Fatalf("expected output %q, got %q", want, got)
	}
	if !halted {
		t.Fatal("expected Panic to call haltFn")
	}
}
