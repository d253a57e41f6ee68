// Package node implements the TIS-100 programmable node, its memory-node
// counterpart, and the damaged (corrupted) node, all behind a single Node
// interface so the grid can drive them uniformly.
package node

import "github.com/tis-100/emu/iobus"

// Node is the interface every grid cell exposes to the cycle driver.
type Node interface {
	// Step performs up to one instruction's worth of work this cycle.
	Step(v *iobus.View)
	// Sync finalizes after peers may have consumed this node's writes.
	Sync(v *iobus.View)
	// IsStalled reports whether the node is making forward progress. Nodes
	// that never execute (memory, damaged, test drivers) are always
	// stalled for deadlock-detection purposes.
	IsStalled() bool
}

// DamagedNode is a corrupted TIS-100 tile. Step and Sync have no effect.
type DamagedNode struct{}

// Step implements Node. A damaged node never does anything.
func (DamagedNode) Step(*iobus.View) {}

// Sync implements Node. A damaged node never does anything.
func (DamagedNode) Sync(*iobus.View) {}

// IsStalled implements Node. A damaged node is always stalled.
func (DamagedNode) IsStalled() bool { return true }
