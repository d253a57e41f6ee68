package node

import (
	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/iobus"
)

// Mode is the execution state of an ExecNode.
type Mode int

const (
	MODE_UNIMPLEMENTED Mode = iota // Start of valid Mode enumerations.
	IDLE                            // Never fetched an instruction (empty program).
	RUN                             // Ready to fetch and evaluate the next instruction.
	READ                            // Blocked: the last source read had nothing available.
	WRITE                           // Blocked: the last destination write has not been consumed.
	MODE_MAX                       // End of Mode enumerations.
)

// anyPriority is the authoritative port order for an IO(ANY) read: the
// first port to offer a value wins. spec.md adopts LEFT, RIGHT, UP, DOWN —
// the order used by the later refactor of the original source and by the
// stack node's offer order — over the earlier UP/DOWN/LEFT/RIGHT variant.
var anyPriority = [4]core.Port{core.LEFT, core.RIGHT, core.UP, core.DOWN}

// anyWriteOrder is the order ExecNode issues the four broadcast writes for
// IO(ANY); order has no observable effect on a write (all four are pending
// in the same cycle), so it need not match anyPriority.
var anyWriteOrder = [4]core.Port{core.UP, core.DOWN, core.LEFT, core.RIGHT}

// ExecNode executes TIS-100 assembly: program counter, ACC, BAK, LAST, and
// the four-state Read/Write/Run/Idle execution mode.
type ExecNode struct {
	program core.Program // The instructions this node runs; may be empty.
	pc      int          // Index of the next instruction to fetch.
	mode    Mode         // Current execution mode.
	acc     int          // The accumulator.
	bak     int          // The backup register, only touched by SAV/SWP.
	last    core.Port    // The port most recently read successfully.
	hasLast bool         // Whether last holds a value yet.
	jumped  bool         // Whether the instruction being evaluated set pc itself.
}

// NewExecNode constructs an empty, idle ExecNode.
func NewExecNode() *ExecNode {
	return &ExecNode{mode: IDLE}
}

// NewExecNodeWithProgram constructs an ExecNode and installs program.
func NewExecNodeWithProgram(program core.Program) *ExecNode {
	n := NewExecNode()
	n.SetProgram(program)
	return n
}

// SetProgram installs program on the node, resetting pc to 0.
func (n *ExecNode) SetProgram(program core.Program) {
	n.program = program
	n.pc = 0
}

// Mode returns the node's current execution mode.
func (n *ExecNode) Mode() Mode { return n.mode }

// PC returns the node's current program counter.
func (n *ExecNode) PC() int { return n.pc }

// ACC returns the node's accumulator value.
func (n *ExecNode) ACC() int { return n.acc }

// BAK returns the node's backup register value.
func (n *ExecNode) BAK() int { return n.bak }

// incPC advances the program counter by one, wrapping to 0.
func (n *ExecNode) incPC() {
	max := len(n.program)
	if max == 0 {
		n.pc = 0
		return
	}
	n.pc = (n.pc + 1) % max
}

// setPC clamps pc into [0, max(len(program)-1, 0)] and installs it.
func (n *ExecNode) setPC(pc int) {
	max := len(n.program) - 1
	if max < 0 {
		max = 0
	}
	if pc < 0 {
		pc = 0
	} else if pc > max {
		pc = max
	}
	n.pc = pc
	n.jumped = true
}

// fetch returns the instruction at pc, if pc is in range.
func (n *ExecNode) fetch() (core.Instruction, bool) {
	if n.pc < 0 || n.pc >= len(n.program) {
		return core.Instruction{}, false
	}
	return n.program[n.pc], true
}

// Step implements Node. If the node is not blocked on a write, it fetches
// and evaluates the instruction at pc, advancing pc only if the evaluation
// neither blocked the node on a read or a write nor set pc with a jump.
func (n *ExecNode) Step(v *iobus.View) {
	if n.mode == WRITE {
		return
	}
	instr, ok := n.fetch()
	if !ok {
		n.mode = IDLE
		return
	}
	n.mode = RUN
	n.jumped = false
	n.eval(instr, v)
	if n.mode == RUN && !n.jumped {
		n.incPC()
	}
}

// Sync implements Node. If the node was blocked on a write that has since
// been consumed, it resumes running and advances pc.
func (n *ExecNode) Sync(v *iobus.View) {
	if n.mode == WRITE && !v.IsBlocked() {
		n.mode = RUN
		n.incPC()
	}
}

// IsStalled implements Node. An execution node makes forward progress only
// in RUN mode; IDLE, READ, and WRITE are all stalled.
func (n *ExecNode) IsStalled() bool {
	return n.mode != RUN
}

// eval evaluates a single instruction against the node's registers and
// port view.
func (n *ExecNode) eval(instr core.Instruction, v *iobus.View) {
	switch instr.Op {
	case core.OP_NOP:
		// No effect.
	case core.OP_MOV:
		if val, ok := n.read(v, instr.Src); ok {
			n.write(v, instr.Dst, core.Clamp(val))
		}
	case core.OP_SWP:
		n.acc, n.bak = n.bak, n.acc
	case core.OP_SAV:
		n.bak = n.acc
	case core.OP_ADD:
		if val, ok := n.read(v, instr.Src); ok {
			n.acc += val
		}
	case core.OP_SUB:
		if val, ok := n.read(v, instr.Src); ok {
			n.acc -= val
		}
	case core.OP_NEG:
		n.acc = -n.acc
	case core.OP_JMP:
		n.setPC(instr.Target)
	case core.OP_JEZ:
		if n.acc == 0 {
			n.setPC(instr.Target)
		}
	case core.OP_JNZ:
		if n.acc != 0 {
			n.setPC(instr.Target)
		}
	case core.OP_JGZ:
		if n.acc > 0 {
			n.setPC(instr.Target)
		}
	case core.OP_JLZ:
		if n.acc < 0 {
			n.setPC(instr.Target)
		}
	case core.OP_JRO:
		if off, ok := n.read(v, instr.Src); ok {
			n.setPC(n.pc + off)
		}
	}
}

// read evaluates a source operand. On a blocking IO read with nothing
// available, it sets mode to READ and returns false; the instruction will
// be re-evaluated from the same pc next cycle.
func (n *ExecNode) read(v *iobus.View, src core.Source) (int, bool) {
	val, ok := n.readRaw(v, src)
	if !ok {
		n.mode = READ
	}
	return val, ok
}

func (n *ExecNode) readRaw(v *iobus.View, src core.Source) (int, bool) {
	switch src.Kind {
	case core.SRC_IMMEDIATE:
		return src.Value, true
	case core.SRC_REGISTER:
		return n.readRegister(v, src.Reg)
	default:
		return 0, false
	}
}

func (n *ExecNode) readRegister(v *iobus.View, reg core.Register) (int, bool) {
	switch reg.Kind {
	case core.REG_ACC:
		return n.acc, true
	case core.REG_NIL:
		return 0, true
	case core.REG_IO:
		return n.readIo(v, reg.Io)
	default:
		return 0, false
	}
}

func (n *ExecNode) readIo(v *iobus.View, io core.IoRegister) (int, bool) {
	switch io.Kind {
	case core.IO_DIRECTION:
		val, ok := v.Read(io.Dir)
		if ok {
			n.last, n.hasLast = io.Dir, true
		}
		return val, ok
	case core.IO_ANY:
		for _, p := range anyPriority {
			if val, ok := v.Read(p); ok {
				n.last, n.hasLast = p, true
				return val, true
			}
		}
		return 0, false
	case core.IO_LAST:
		if !n.hasLast {
			return 0, true
		}
		return v.Read(n.last)
	default:
		return 0, false
	}
}

// write evaluates a destination register. ACC/NIL are synchronous and leave
// the node in RUN mode; an IO destination that issues a write sets mode to
// WRITE and the node stays there until Sync observes the write was consumed.
func (n *ExecNode) write(v *iobus.View, dst core.Register, value int) {
	switch dst.Kind {
	case core.REG_ACC:
		n.acc = value
	case core.REG_NIL:
		// Discarded.
	case core.REG_IO:
		if n.writeIo(v, dst.Io, value) {
			n.mode = WRITE
		}
	}
}

// writeIo issues the actual port writes for an IO destination and reports
// whether a write was issued at all. IO(LAST) with no prior successful read
// issues nothing and must not block the node.
func (n *ExecNode) writeIo(v *iobus.View, io core.IoRegister, value int) bool {
	switch io.Kind {
	case core.IO_DIRECTION:
		v.Write(io.Dir, value)
		return true
	case core.IO_ANY:
		for _, p := range anyWriteOrder {
			v.Write(p, value)
		}
		return true
	case core.IO_LAST:
		if n.hasLast {
			v.Write(n.last, value)
			return true
		}
		return false
	default:
		return false
	}
}
