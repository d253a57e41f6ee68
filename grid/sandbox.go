package grid

import (
	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
	"github.com/tis-100/emu/save"
	"github.com/tis-100/emu/specfile"
	"github.com/tis-100/emu/testnode"
)

// consoleNode collects every value read from its UP port, in order, for
// later retrieval by Sandbox.ReadConsole. Unlike testnode.OutputNode it
// judges nothing; it is purely a FIFO.
type consoleNode struct {
	values []int
}

func (c *consoleNode) Step(v *iobus.View) {
	if val, ok := v.Read(core.UP); ok {
		c.values = append(c.values, val)
	}
}

func (c *consoleNode) pop() (int, bool) {
	if len(c.values) == 0 {
		return 0, false
	}
	val := c.values[0]
	c.values = c.values[1:]
	return val, true
}

// Sandbox is an all-Compute grid with a single console input wired into
// the top of column 1 and a single console output wired into the bottom
// of column 2, for interactive use outside of any puzzle's judges.
type Sandbox struct {
	grid *Grid
	in   *testnode.InputNode
	out  *consoleNode
}

const (
	sandboxInputColumn  = 1
	sandboxOutputColumn = 2
)

// NewSandbox constructs an all-Compute Sandbox grid and installs programs
// (by node index) from the given save.
func NewSandbox(programs save.Save) *Sandbox {
	var layout [NumNodes]specfile.Tile
	for i := range layout {
		layout[i] = specfile.COMPUTE
	}

	g := New(layout, programs)

	in := testnode.NewInputNode(nil)
	g.inputs[firstInputID+iobus.NodeID(sandboxInputColumn)] = in

	out := &consoleNode{}
	g.consoles[firstOutputID+iobus.NodeID(sandboxOutputColumn)] = out

	return &Sandbox{grid: g, in: in, out: out}
}

// Step drives one full cycle of the underlying grid.
func (s *Sandbox) Step() {
	s.grid.Tick()
}

// Cycles reports how many Step calls have run.
func (s *Sandbox) Cycles() int { return s.grid.Cycles() }

// IsDeadlocked reports whether the grid has stopped making progress.
func (s *Sandbox) IsDeadlocked() bool { return s.grid.IsDeadlocked() }

// WriteConsole queues value to be fed into the top of the input column.
func (s *Sandbox) WriteConsole(value int) {
	s.in.Append(core.Clamp(value))
}

// ReadConsole pops the oldest value observed at the output column, if
// any has arrived yet.
func (s *Sandbox) ReadConsole() (int, bool) {
	return s.out.pop()
}
