package asm

import (
	"strings"
	"testing"

	"github.com/tis-100/emu/core"
)

func TestParseSimpleProgram(t *testing.T) {
	src := "MOV UP ACC\nADD 1\nMOV ACC DOWN\n"
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(prog) != 3 {
		t.Fatalf("len(prog) = %d, want 3", len(prog))
	}
	if prog[0].Op != core.OP_MOV || prog[0].Dst.Kind != core.REG_ACC {
		t.Fatalf("prog[0] = %+v", prog[0])
	}
	if prog[1].Op != core.OP_ADD || prog[1].Src.Value != 1 {
		t.Fatalf("prog[1] = %+v", prog[1])
	}
}

func TestParseLowercaseIsUpcased(t *testing.T) {
	prog, err := Parse("mov up acc")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(prog) != 1 || prog[0].Op != core.OP_MOV {
		t.Fatalf("prog = %+v", prog)
	}
}

func TestParseResolvesForwardLabel(t *testing.T) {
	src := "jmp loop\nloop: nop"
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if prog[0].Op != core.OP_JMP || prog[0].Target != 1 {
		t.Fatalf("prog[0] = %+v, want JMP target 1", prog[0])
	}
}

func TestParseResolvesLabelOnBlankLine(t *testing.T) {
	src := "top:\nnop\njmp top"
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if prog[1].Target != 0 {
		t.Fatalf("prog[1].Target = %d, want 0", prog[1].Target)
	}
}

func TestParseUndefinedLabel(t *testing.T) {
	_, err := Parse("jmp nowhere")
	list, ok := err.(ErrorList)
	if !ok || len(list) != 1 || list[0].Kind != ERR_UNDEFINED_LABEL {
		t.Fatalf("err = %v, want one ERR_UNDEFINED_LABEL", err)
	}
}

func TestParseDuplicateLabel(t *testing.T) {
	_, err := Parse("a: nop\na: nop")
	list, ok := err.(ErrorList)
	if !ok || len(list) != 1 || list[0].Kind != ERR_DUPLICATE_LABEL {
		t.Fatalf("err = %v, want one ERR_DUPLICATE_LABEL", err)
	}
}

func TestParseInvalidOpcode(t *testing.T) {
	_, err := Parse("BOGUS ACC")
	list, ok := err.(ErrorList)
	if !ok || len(list) != 1 || list[0].Kind != ERR_INVALID_OPCODE {
		t.Fatalf("err = %v, want one ERR_INVALID_OPCODE", err)
	}
}

func TestParseWrongOperandCount(t *testing.T) {
	_, err := Parse("MOV ACC")
	list, ok := err.(ErrorList)
	if !ok || len(list) != 1 || list[0].Kind != ERR_WRONG_OPERAND_COUNT {
		t.Fatalf("err = %v, want one ERR_WRONG_OPERAND_COUNT", err)
	}
}

func TestParseImmediateIsClamped(t *testing.T) {
	prog, err := Parse("MOV 5000 ACC")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if prog[0].Src.Value != core.MaxValue {
		t.Fatalf("Src.Value = %d, want %d", prog[0].Src.Value, core.MaxValue)
	}
}

func TestParseEmptyProgramIsLegal(t *testing.T) {
	prog, err := Parse("")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(prog) != 0 {
		t.Fatalf("len(prog) = %d, want 0", len(prog))
	}
}

func TestParseDropsInstructionsPastTheCap(t *testing.T) {
	src := strings.Repeat("NOP\n", core.MaxInstructions+5)
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(prog) != core.MaxInstructions {
		t.Fatalf("len(prog) = %d, want %d", len(prog), core.MaxInstructions)
	}
}

func TestErrorListErrorJoinsMessages(t *testing.T) {
	_, err := Parse("BOGUS\nmov acc")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), "2 error(s)") {
		t.Fatalf("Error() = %q, want a count of 2", err.Error())
	}
}
