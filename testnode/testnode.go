// Package testnode implements the driver and judge nodes used by puzzle
// grids: a fixed input stream fed in from above, a fixed expected output
// stream checked from below, and a framebuffer judged against a reference
// image. None of these nodes execute instructions; all three report
// IsStalled unconditionally so the deadlock detector treats them as fixed
// points rather than participants.
package testnode

import (
	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
)

// State reports a judge node's verdict against its expected data.
type State int

const (
	STATE_UNIMPLEMENTED State = iota
	TESTING                   // Expected data remains; no verdict yet.
	PASSED                    // All observed values matched expectations.
	FAILED                    // At least one observed value did not match.
	STATE_MAX
)

func (s State) String() string {
	switch s {
	case TESTING:
		return "TESTING"
	case PASSED:
		return "PASSED"
	case FAILED:
		return "FAILED"
	default:
		return "UNIMPLEMENTED"
	}
}

// InputNode streams a fixed sequence of values out its DOWN port, one per
// successful write, in order.
type InputNode struct {
	data    []int
	blocked bool
}

// NewInputNode constructs an InputNode that will emit data in order.
func NewInputNode(data []int) *InputNode {
	return &InputNode{data: append([]int(nil), data...)}
}

// Step implements node.Node. The front value is written once and stays on
// the wire until it is consumed; no further write is issued while it is
// pending, and nothing is written once the stream is exhausted.
func (n *InputNode) Step(v *iobus.View) {
	if n.blocked || len(n.data) == 0 {
		return
	}
	v.Write(core.DOWN, n.data[0])
	n.blocked = true
}

// Sync implements node.Node. If the offered value was consumed, it is
// popped from the front of the stream.
func (n *InputNode) Sync(v *iobus.View) {
	if n.blocked && !v.IsBlocked() {
		n.data = n.data[1:]
		n.blocked = false
	}
}

// IsStalled implements node.Node.
func (n *InputNode) IsStalled() bool { return true }

// Remaining reports how many values have not yet been written.
func (n *InputNode) Remaining() int { return len(n.data) }

// Append queues an additional value at the back of the stream. Used by
// interactive drivers (the sandbox console) that feed values in as they
// arrive rather than all up front.
func (n *InputNode) Append(value int) {
	n.data = append(n.data, value)
}

// expectedObserved pairs one expected value with what was actually read.
type expectedObserved struct {
	expected, observed int
}

// OutputNode reads values from its UP port and checks each against the
// next value in a fixed expected sequence.
type OutputNode struct {
	expected []int
	observed []expectedObserved
}

// NewOutputNode constructs an OutputNode expecting the given sequence.
func NewOutputNode(expected []int) *OutputNode {
	return &OutputNode{expected: append([]int(nil), expected...)}
}

// Step implements node.Node. Every value read is paired with the next
// expected value, if any remain; values read past the end of the expected
// stream are silently discarded (there is nothing left to grade them
// against).
func (n *OutputNode) Step(v *iobus.View) {
	val, ok := v.Read(core.UP)
	if !ok {
		return
	}
	if len(n.expected) == 0 {
		return
	}
	n.observed = append(n.observed, expectedObserved{expected: n.expected[0], observed: val})
	n.expected = n.expected[1:]
}

// Sync implements node.Node. An output node never writes, so there is
// nothing to finalize.
func (n *OutputNode) Sync(v *iobus.View) {}

// IsStalled implements node.Node.
func (n *OutputNode) IsStalled() bool { return true }

// State implements a judge: Testing while expected values remain, then
// Passed or Failed depending on whether every observed value matched.
func (n *OutputNode) State() State {
	if len(n.expected) > 0 {
		return TESTING
	}
	for _, pair := range n.observed {
		if pair.expected != pair.observed {
			return FAILED
		}
	}
	return PASSED
}
