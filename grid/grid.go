// Package grid assembles the fixed 4x3 TIS-100 board out of package node's
// node types and package iobus's port fabric, drives the six-phase cycle
// described by the puzzle and sandbox facades, and detects deadlock.
package grid

import (
	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
	"github.com/tis-100/emu/node"
	"github.com/tis-100/emu/save"
	"github.com/tis-100/emu/specfile"
	"github.com/tis-100/emu/testnode"
)

// Columns and Rows describe the fixed board shape; NumNodes is their
// product, matching specfile.NumNodes.
const (
	Columns = 4
	Rows    = 3
	NumNodes = Columns * Rows
)

// Node IDs 0..11 are the programmable grid; 12..15 are the top input
// pseudo-nodes (one per column); 16..19 are the bottom output pseudo-nodes
// (one per column).
const (
	firstInputID  iobus.NodeID = NumNodes
	firstOutputID iobus.NodeID = NumNodes + Columns
)

// deadlockThreshold is the longest run of consecutive fully-stalled cycles
// that is still not a deadlock; IsDeadlocked needs a longer run (two
// cycles), which tolerates one transitional cycle where every node happens
// to be between Read/Write states without the grid truly having stopped.
const deadlockThreshold = 1

// Grid is a fully wired TIS-100 board: 12 programmable slots in a 4x3
// layout, plus up to 4 input and 4 output/image test drivers.
type Grid struct {
	bus   *iobus.Bus
	slots [NumNodes]node.Node

	inputs   map[iobus.NodeID]*testnode.InputNode
	outputs  map[iobus.NodeID]*testnode.OutputNode
	images   map[iobus.NodeID]*testnode.ImageNode
	consoles map[iobus.NodeID]*consoleNode

	cycles      int
	stallStreak int
}

// New constructs a Grid from a tile layout and the programs assembled for
// its Compute slots.
func New(layout [NumNodes]specfile.Tile, programs save.Save) *Grid {
	g := &Grid{
		bus:      iobus.New(),
		inputs:   make(map[iobus.NodeID]*testnode.InputNode),
		outputs:  make(map[iobus.NodeID]*testnode.OutputNode),
		images:   make(map[iobus.NodeID]*testnode.ImageNode),
		consoles: make(map[iobus.NodeID]*consoleNode),
	}

	for i, tile := range layout {
		switch tile {
		case specfile.MEMORY:
			g.slots[i] = node.NewStackNode()
		case specfile.DAMAGED:
			g.slots[i] = node.DamagedNode{}
		default: // specfile.COMPUTE, and any unrecognized tile is treated as a compute node
			if prog, ok := programs[i]; ok {
				g.slots[i] = node.NewExecNodeWithProgram(prog)
			} else {
				g.slots[i] = node.NewExecNode()
			}
		}
	}

	g.wireTopology()
	return g
}

// wireTopology lays out the fixed edges of §4.6: the 3 horizontal pairs per
// row, the 8 vertical pairs between rows, and the half-duplex pseudo-node
// edges at the top and bottom of each column.
func (g *Grid) wireTopology() {
	for row := 0; row < Rows; row++ {
		base := row * Columns
		for col := 0; col < Columns-1; col++ {
			g.bus.ConnectFull(iobus.NodeID(base+col), iobus.NodeID(base+col+1), core.RIGHT)
		}
	}
	for row := 0; row < Rows-1; row++ {
		for col := 0; col < Columns; col++ {
			top := iobus.NodeID(row*Columns + col)
			bottom := iobus.NodeID((row+1)*Columns + col)
			g.bus.ConnectFull(top, bottom, core.DOWN)
		}
	}
	for col := 0; col < Columns; col++ {
		inputID := firstInputID + iobus.NodeID(col)
		g.bus.ConnectHalf(inputID, iobus.NodeID(col), core.DOWN)

		outputID := firstOutputID + iobus.NodeID(col)
		bottomRow := iobus.NodeID((Rows-1)*Columns + col)
		g.bus.ConnectHalf(bottomRow, outputID, core.DOWN)
	}
}

// AttachStream wires one spec stream to its column's pseudo-node: input
// streams to the top of the column, output and image streams to the
// bottom.
func (g *Grid) AttachStream(stream specfile.Stream) {
	switch stream.Kind {
	case specfile.INPUT:
		id := firstInputID + iobus.NodeID(stream.Node)
		g.inputs[id] = testnode.NewInputNode(stream.Data)
	case specfile.OUTPUT:
		id := firstOutputID + iobus.NodeID(stream.Node)
		g.outputs[id] = testnode.NewOutputNode(stream.Data)
	case specfile.IMAGE:
		id := firstOutputID + iobus.NodeID(stream.Node)
		g.images[id] = testnode.NewImageNode(stream.Data, 30, 18)
	}
}

// Cycles reports how many Tick calls have run.
func (g *Grid) Cycles() int { return g.cycles }

// Tick drives one full cycle: test inputs step, grid nodes step, test
// outputs/images step, grid nodes sync, test inputs sync, commit.
func (g *Grid) Tick() {
	for _, id := range sortedKeys(g.inputs) {
		g.inputs[id].Step(g.bus.View(id))
	}

	for i := 0; i < NumNodes; i++ {
		g.slots[i].Step(g.bus.View(iobus.NodeID(i)))
	}

	for _, id := range sortedOutputKeys(g.outputs) {
		g.outputs[id].Step(g.bus.View(id))
	}
	for _, id := range sortedImageKeys(g.images) {
		g.images[id].Step(g.bus.View(id))
	}
	for _, id := range sortedConsoleKeys(g.consoles) {
		g.consoles[id].Step(g.bus.View(id))
	}

	for i := 0; i < NumNodes; i++ {
		g.slots[i].Sync(g.bus.View(iobus.NodeID(i)))
	}

	for _, id := range sortedKeys(g.inputs) {
		g.inputs[id].Sync(g.bus.View(id))
	}

	g.bus.Commit()
	g.cycles++
	g.updateDeadlock()
}

func (g *Grid) updateDeadlock() {
	for i := 0; i < NumNodes; i++ {
		if !g.slots[i].IsStalled() {
			g.stallStreak = 0
			return
		}
	}
	g.stallStreak++
}

// IsDeadlocked reports whether the grid has gone deadlockThreshold+1
// consecutive cycles with every programmable node stalled.
func (g *Grid) IsDeadlocked() bool {
	return g.stallStreak > deadlockThreshold
}

// View exposes the port fabric view for a raw node ID; used by the
// sandbox facade to drive its console pseudo-ports directly.
func (g *Grid) View(id iobus.NodeID) *iobus.View {
	return g.bus.View(id)
}

func sortedKeys(m map[iobus.NodeID]*testnode.InputNode) []iobus.NodeID {
	ids := make([]iobus.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	insertionSort(ids)
	return ids
}

func sortedOutputKeys(m map[iobus.NodeID]*testnode.OutputNode) []iobus.NodeID {
	ids := make([]iobus.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	insertionSort(ids)
	return ids
}

func sortedConsoleKeys(m map[iobus.NodeID]*consoleNode) []iobus.NodeID {
	ids := make([]iobus.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	insertionSort(ids)
	return ids
}

func sortedImageKeys(m map[iobus.NodeID]*testnode.ImageNode) []iobus.NodeID {
	ids := make([]iobus.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	insertionSort(ids)
	return ids
}

func insertionSort(ids []iobus.NodeID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
