package task

import (
	"testing"

	"rvkernel/kernel/config"
)

func TestTimeSliceTick(t *testing.T) {
	tk := newCommon("t")
	tk.ResetTimeSlice()

	fired := false
	for i := 0; i < config.MaxTimeSlice && !fired; i++ {
		fired = tk.TickTimeSlice()
	}
	if !fired {
		t.Fatal("expected time slice to fire within MAX_TIME_SLICE ticks")
	}
}

func TestRefCountRetainRelease(t *testing.T) {
	tk := newCommon("t")
	if tk.RefCount() != 1 {
		t.Fatalf("expected initial refcount 1, got %d", tk.RefCount())
	}
	tk.Retain()
	if tk.RefCount() != 2 {
		t.Fatalf("expected refcount 2 after Retain, got %d", tk.RefCount())
	}
	if got := tk.Release(); got != 1 {
		t.Fatalf("expected refcount 1 after Release, got %d", got)
	}
}

func TestCurrentAnchorDualOwnership(t *testing.T) {
	a := newCommon("a")
	b := newCommon("b")

	InitCurrent(a)
	if Current() != a {
		t.Fatal("expected a to be current")
	}
	if a.RefCount() != 2 {
		t.Fatalf("expected a's refcount to be 2 (creation + anchor), got %d", a.RefCount())
	}

	SetCurrent(a, b)
	if Current() != b {
		t.Fatal("expected b to be current")
	}
	if a.RefCount() != 1 {
		t.Fatalf("expected a's refcount to drop to 1 after handoff, got %d", a.RefCount())
	}
	if b.RefCount() != 2 {
		t.Fatalf("expected b's refcount to be 2, got %d", b.RefCount())
	}
}

func TestCanPreempt(t *testing.T) {
	tk := newCommon("t")
	if !tk.CanPreempt(0) {
		t.Fatal("expected CanPreempt(0) with no disables")
	}
	tk.IncPreemptDisable()
	if tk.CanPreempt(0) {
		t.Fatal("expected CanPreempt(0) to be false with one outstanding disable")
	}
	if !tk.CanPreempt(1) {
		t.Fatal("expected CanPreempt(1) to hold when the only disable is the caller's baseline")
	}
}
