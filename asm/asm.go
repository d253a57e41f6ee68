// Package asm assembles lexed TIS-100 source into a core.Program: a label
// pass resolves jump targets to absolute instruction indices, then an
// instruction pass parses each opcode and its operands.
package asm

import (
	"fmt"
	"strconv"

	"github.com/tis-100/emu/core"
	"github.com/tis-100/emu/lex"
)

// ErrorKind distinguishes the ways a line of source can fail to assemble.
type ErrorKind int

const (
	ERR_UNIMPLEMENTED ErrorKind = iota
	ERR_DUPLICATE_LABEL
	ERR_UNDEFINED_LABEL
	ERR_INVALID_OPCODE
	ERR_INVALID_OPERAND
	ERR_WRONG_OPERAND_COUNT
	ERR_MAX
)

// ParseError reports one line that failed to assemble.
type ParseError struct {
	Kind ErrorKind
	Line int    // Source line number, 0-indexed.
	Text string // The offending token or label name.
}

// Error implements the error interface for ParseError.
func (e ParseError) Error() string {
	switch e.Kind {
	case ERR_DUPLICATE_LABEL:
		return fmt.Sprintf("line %d: duplicate label %q", e.Line, e.Text)
	case ERR_UNDEFINED_LABEL:
		return fmt.Sprintf("line %d: undefined label %q", e.Line, e.Text)
	case ERR_INVALID_OPCODE:
		return fmt.Sprintf("line %d: invalid opcode %q", e.Line, e.Text)
	case ERR_INVALID_OPERAND:
		return fmt.Sprintf("line %d: invalid operand %q", e.Line, e.Text)
	case ERR_WRONG_OPERAND_COUNT:
		return fmt.Sprintf("line %d: wrong number of operands for %q", e.Line, e.Text)
	default:
		return fmt.Sprintf("line %d: invalid syntax %q", e.Line, e.Text)
	}
}

// ErrorList collects every ParseError found while assembling a program; a
// non-empty ErrorList is itself an error.
type ErrorList []ParseError

// Error implements the error interface for ErrorList, joining every
// message found.
func (l ErrorList) Error() string {
	s := fmt.Sprintf("%d error(s) assembling program", len(l))
	for _, e := range l {
		s += "\n\t" + e.Error()
	}
	return s
}

// Parse assembles src into a core.Program, or returns every ParseError
// found as an ErrorList.
func Parse(src string) (core.Program, error) {
	lines := lex.Program(src)

	labels := make(map[string]int)
	var errs ErrorList

	for _, l := range lines {
		if l.Label == nil {
			continue
		}
		if _, dup := labels[l.Label.Name]; dup {
			errs = append(errs, ParseError{Kind: ERR_DUPLICATE_LABEL, Line: l.Number, Text: l.Label.Name})
			continue
		}
		labels[l.Label.Name] = l.Label.Index
	}

	var program core.Program
	for _, l := range lines {
		if len(l.Tokens) == 0 {
			continue
		}
		instr, err := parseInstruction(l.Number, l.Tokens, labels)
		if err != nil {
			errs = append(errs, err.(ParseError))
			continue
		}
		program = append(program, instr)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return program, nil
}

// parseInstruction parses one non-empty token list (opcode plus 0-2
// operands) into an Instruction, resolving any jump-target label against
// labels.
func parseInstruction(lineNum int, tokens []string, labels map[string]int) (core.Instruction, error) {
	opStr := tokens[0]
	operands := tokens[1:]

	op, err := core.ParseOpcode(opStr)
	if err != nil {
		return core.Instruction{}, ParseError{Kind: ERR_INVALID_OPCODE, Line: lineNum, Text: opStr}
	}

	wrongCount := func() error {
		return ParseError{Kind: ERR_WRONG_OPERAND_COUNT, Line: lineNum, Text: opStr}
	}

	switch op {
	case core.OP_NOP, core.OP_SWP, core.OP_SAV, core.OP_NEG:
		if len(operands) != 0 {
			return core.Instruction{}, wrongCount()
		}
		return core.Instruction{Op: op}, nil

	case core.OP_MOV:
		if len(operands) != 2 {
			return core.Instruction{}, wrongCount()
		}
		src, err := parseSource(lineNum, operands[0])
		if err != nil {
			return core.Instruction{}, err
		}
		dst, err := parseRegister(lineNum, operands[1])
		if err != nil {
			return core.Instruction{}, err
		}
		return core.Instruction{Op: op, Src: src, Dst: dst}, nil

	case core.OP_ADD, core.OP_SUB, core.OP_JRO:
		if len(operands) != 1 {
			return core.Instruction{}, wrongCount()
		}
		src, err := parseSource(lineNum, operands[0])
		if err != nil {
			return core.Instruction{}, err
		}
		return core.Instruction{Op: op, Src: src}, nil

	case core.OP_JMP, core.OP_JEZ, core.OP_JNZ, core.OP_JGZ, core.OP_JLZ:
		if len(operands) != 1 {
			return core.Instruction{}, wrongCount()
		}
		target, ok := labels[operands[0]]
		if !ok {
			return core.Instruction{}, ParseError{Kind: ERR_UNDEFINED_LABEL, Line: lineNum, Text: operands[0]}
		}
		return core.Instruction{Op: op, Target: target}, nil

	default:
		return core.Instruction{}, ParseError{Kind: ERR_INVALID_OPCODE, Line: lineNum, Text: opStr}
	}
}

// parseSource parses an operand as an immediate integer or a register.
func parseSource(lineNum int, tok string) (core.Source, error) {
	if n, err := strconv.Atoi(tok); err == nil {
		return core.Source{Kind: core.SRC_IMMEDIATE, Value: core.Clamp(n)}, nil
	}
	reg, err := core.ParseRegister(tok)
	if err != nil {
		return core.Source{}, ParseError{Kind: ERR_INVALID_OPERAND, Line: lineNum, Text: tok}
	}
	return core.Source{Kind: core.SRC_REGISTER, Reg: reg}, nil
}

// parseRegister parses an operand as a register (MOV's destination may
// never be an immediate).
func parseRegister(lineNum int, tok string) (core.Register, error) {
	reg, err := core.ParseRegister(tok)
	if err != nil {
		return core.Register{}, ParseError{Kind: ERR_INVALID_OPERAND, Line: lineNum, Text: tok}
	}
	return reg, nil
}
