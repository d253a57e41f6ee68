package testnode

import (
	"testing"

	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
)

func TestInputNodeStreamsInOrder(t *testing.T) {
	b := iobus.New()
	b.ConnectFull(0, 1, core.DOWN)

	in := NewInputNode([]int{1, 2, 3})
	v := b.View(0)

	for i, want := range []int{1, 2, 3} {
		in.Step(v)
		b.Commit()
		got, ok := b.View(1).Read(core.UP)
		if !ok || got != want {
			t.Fatalf("value %d: Read() = (%d, %v), want (%d, true)", i, got, ok, want)
		}
		in.Sync(v)
		b.Commit()
	}
	if in.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0", in.Remaining())
	}
}

func TestInputNodeHoldsValueUntilConsumed(t *testing.T) {
	b := iobus.New()
	b.ConnectFull(0, 1, core.DOWN)
	in := NewInputNode([]int{5})
	v := b.View(0)

	in.Step(v)
	b.Commit()
	in.Sync(v) // nobody read it yet
	if in.Remaining() != 1 {
		t.Fatalf("Remaining() = %d, want 1 (value must not be dropped unread)", in.Remaining())
	}
}

func TestOutputNodePassesOnExactMatch(t *testing.T) {
	b := iobus.New()
	b.ConnectFull(0, 1, core.DOWN)
	out := NewOutputNode([]int{1, 2})

	b.View(0).Write(core.DOWN, 1)
	b.Commit()
	out.Step(b.View(1))
	if out.State() != TESTING {
		t.Fatalf("State() = %v, want TESTING", out.State())
	}

	b.View(0).Write(core.DOWN, 2)
	b.Commit()
	out.Step(b.View(1))
	if out.State() != PASSED {
		t.Fatalf("State() = %v, want PASSED", out.State())
	}
}

func TestOutputNodeFailsOnMismatch(t *testing.T) {
	b := iobus.New()
	b.ConnectFull(0, 1, core.DOWN)
	out := NewOutputNode([]int{1})

	b.View(0).Write(core.DOWN, 99)
	b.Commit()
	out.Step(b.View(1))

	if out.State() != FAILED {
		t.Fatalf("State() = %v, want FAILED", out.State())
	}
}

func TestImageNodePassesWhenPixelsMatch(t *testing.T) {
	img := NewImageNode([]int{1, 0, 0, 2}, 2, 2)
	b := iobus.New()
	b.ConnectFull(0, 1, core.DOWN)
	v := b.View(1)
	source := b.View(0)

	write := func(val int) {
		source.Write(core.DOWN, val)
		b.Commit()
		img.Step(v)
		b.Commit()
	}

	// Paint (0,0) = DarkGrey(1).
	write(0)
	write(0)
	write(1)
	write(-1)
	// Paint (1,1) = BrightGrey(2).
	write(1)
	write(1)
	write(2)

	if img.State() != PASSED {
		t.Fatalf("State() = %v, want PASSED", img.State())
	}
}

func TestImageNodeNeverFails(t *testing.T) {
	img := NewImageNode([]int{1}, 1, 1)
	b := iobus.New()
	b.ConnectFull(0, 1, core.DOWN)
	source := b.View(0)
	v := b.View(1)

	source.Write(core.DOWN, 0)
	b.Commit()
	img.Step(v)

	if img.State() == FAILED {
		t.Fatalf("image nodes have no FAILED state")
	}
}
