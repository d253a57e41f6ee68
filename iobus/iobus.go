// Package iobus implements the TIS-100 port fabric: a named channel network
// between nodes with edge-addressed single-slot buffers, a commit barrier
// between cycles, and a per-node View that restricts reads and writes to
// that node's connected edges.
//
// The two-phase pending/commit scheme makes every node see a consistent
// snapshot for one cycle, removing ordering sensitivity among nodes within
// a step. Reading a value clears every outbound edge of the writing peer in
// the same commit generation — this is how a broadcast write (the ANY
// register, or a stack node's four-way offer) is satisfied atomically by
// the first reader.
package iobus

import "github.com/tis-100/emu/core"

// NodeID uniquely identifies a node attached to the Bus.
type NodeID int

// EdgeID uniquely identifies a single directional connection between two
// nodes. Edge identifiers are allocated monotonically as connections are
// declared and are never reused.
type EdgeID int

// connection records the edge carrying a value to or from a peer node.
type connection struct {
	edge EdgeID
	peer NodeID
}

// portMap holds, for one node, the edge+peer for each direction it has
// wired as an input or an output.
type portMap struct {
	input  map[core.Port]connection
	output map[core.Port]connection
}

func newPortMap() *portMap {
	return &portMap{
		input:  make(map[core.Port]connection),
		output: make(map[core.Port]connection),
	}
}

// Bus is the port fabric shared by every node in a grid. It owns the
// topology, the committed slots, the pending writes, and the write blocks.
type Bus struct {
	nextEdge EdgeID
	nodes    map[NodeID]*portMap

	committed   map[EdgeID]int // At most one value per edge; absence means empty.
	pending     map[EdgeID]int // Writes staged this cycle, applied on Commit.
	writeBlocks map[NodeID]int // Present iff the node's last write is unconsumed.
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{
		nodes:       make(map[NodeID]*portMap),
		committed:   make(map[EdgeID]int),
		pending:     make(map[EdgeID]int),
		writeBlocks: make(map[NodeID]int),
	}
}

func (b *Bus) ensureNode(n NodeID) *portMap {
	if m, ok := b.nodes[n]; ok {
		return m
	}
	m := newPortMap()
	b.nodes[n] = m
	return m
}

// ConnectHalf creates a one-way edge from --port--> to. The edge is
// registered as from's output on port and to's input on the opposite
// direction. Both node port-maps are created on first use. Returns the
// allocated EdgeID.
func (b *Bus) ConnectHalf(from, to NodeID, port core.Port) EdgeID {
	edge := b.nextEdge
	b.nextEdge++

	fromMap := b.ensureNode(from)
	toMap := b.ensureNode(to)

	fromMap.output[port] = connection{edge: edge, peer: to}
	toMap.input[port.Opposite()] = connection{edge: edge, peer: from}

	return edge
}

// ConnectFull creates ConnectHalf(from, to, port) and its mirror
// ConnectHalf(to, from, port.Opposite()), allocating two edges.
func (b *Bus) ConnectFull(from, to NodeID, port core.Port) {
	b.ConnectHalf(from, to, port)
	b.ConnectHalf(to, from, port.Opposite())
}

// View returns a handle restricted to node n's connected edges.
func (b *Bus) View(n NodeID) *View {
	return &View{bus: b, node: n}
}

// Commit atomically copies all pending writes into the committed slots and
// clears the pending set. Write blocks are untouched; a block is released
// only by a peer's read.
func (b *Bus) Commit() {
	for edge, val := range b.pending {
		b.committed[edge] = val
	}
	b.pending = make(map[EdgeID]int)
}

// write records (edge, value) as node n's pending write on port, and marks
// n as write-blocked on value. A second write to the same edge in the same
// cycle overwrites the first.
func (b *Bus) write(n NodeID, port core.Port, value int) {
	m, ok := b.nodes[n]
	if !ok {
		return
	}
	conn, ok := m.output[port]
	if !ok {
		return
	}
	b.pending[conn.edge] = value
	b.writeBlocks[n] = value
}

// isBlocked reports whether node n currently has an unconsumed write.
func (b *Bus) isBlocked(n NodeID) bool {
	_, ok := b.writeBlocks[n]
	return ok
}

// read looks up node n's input edge for port. If the committed slot holds
// a value, it is removed, the peer's every outbound edge is cleared, and
// the peer's write block is released.
func (b *Bus) read(n NodeID, port core.Port) (int, bool) {
	m, ok := b.nodes[n]
	if !ok {
		return 0, false
	}
	conn, ok := m.input[port]
	if !ok {
		return 0, false
	}
	val, ok := b.committed[conn.edge]
	if !ok {
		return 0, false
	}
	delete(b.committed, conn.edge)
	b.clearOutputs(conn.peer)
	return val, true
}

// clearOutputs drops every committed value on node n's outbound edges and
// releases its write block. This realizes the "broadcast collapse"
// invariant: one read by any consumer of a multi-port write makes the
// offer disappear everywhere at once.
func (b *Bus) clearOutputs(n NodeID) {
	if m, ok := b.nodes[n]; ok {
		for _, conn := range m.output {
			delete(b.committed, conn.edge)
		}
	}
	delete(b.writeBlocks, n)
}

// View provides access to the Bus for a single node, ensuring it can only
// read and write the ports it is connected to.
type View struct {
	bus  *Bus
	node NodeID
}

// Read receives data on the given port, if any is available.
func (v *View) Read(port core.Port) (int, bool) {
	return v.bus.read(v.node, port)
}

// Write sends data on the given port.
func (v *View) Write(port core.Port, value int) {
	v.bus.write(v.node, port, value)
}

// IsBlocked reports whether this node's most recent write is still
// unconsumed.
func (v *View) IsBlocked() bool {
	return v.bus.isBlocked(v.node)
}
