package node

import (
	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
)

// stackPortOrder is the order a StackNode offers its top-of-stack value and
// drains incoming writes. It matches anyPriority so a stack wired into an
// ANY-fed bus behaves like any other neighbor.
var stackPortOrder = [4]core.Port{core.LEFT, core.RIGHT, core.UP, core.DOWN}

// StackNode is a passive memory tile: it holds values in push order and has
// no program of its own. Every cycle it offers its top value to all four
// neighbors at once (first reader wins, per the broadcast-collapse rule)
// and accepts any values offered to it, pushing each onto the stack.
type StackNode struct {
	values   []int
	offering bool // Whether the top value is currently on offer this cycle.
}

// NewStackNode constructs an empty StackNode.
func NewStackNode() *StackNode {
	return &StackNode{}
}

// Values returns the stack's contents, bottom first. Exposed for tests and
// debugger front ends; callers must not mutate the returned slice.
func (s *StackNode) Values() []int {
	return s.values
}

// Step implements Node. If the stack is non-empty, the top value is
// broadcast out every connected direction; any values neighbors push in
// this cycle are appended to the stack.
func (s *StackNode) Step(v *iobus.View) {
	if len(s.values) > 0 {
		top := s.values[len(s.values)-1]
		for _, p := range stackPortOrder {
			v.Write(p, top)
		}
		s.offering = true
	}
	for _, p := range stackPortOrder {
		if val, ok := v.Read(p); ok {
			s.values = append(s.values, val)
		}
	}
}

// Sync implements Node. If the offered top value was consumed by some
// neighbor this cycle, it is popped.
func (s *StackNode) Sync(v *iobus.View) {
	if s.offering && !v.IsBlocked() {
		s.values = s.values[:len(s.values)-1]
	}
	s.offering = false
}

// IsStalled implements Node. A stack node never executes instructions, so
// it is always reported stalled for deadlock-detection purposes.
func (s *StackNode) IsStalled() bool { return true }
