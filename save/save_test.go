package save

import (
	"testing"

	"github.com/tis-100/emu/core"
)

func TestParseSplitsByNodeHeader(t *testing.T) {
	src := "@0\nMOV UP ACC\n@3\nMOV ACC DOWN\n"
	s, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len(save) = %d, want 2", len(s))
	}
	if len(s[0]) != 1 || s[0][0].Op != core.OP_MOV {
		t.Fatalf("s[0] = %+v", s[0])
	}
	if len(s[3]) != 1 || s[3][0].Op != core.OP_MOV {
		t.Fatalf("s[3] = %+v", s[3])
	}
}

func TestParseSkipsLinesBeforeFirstHeader(t *testing.T) {
	src := "NOP\n@5\nNOP\n"
	s, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(s) != 1 {
		t.Fatalf("len(save) = %d, want 1 (pre-header content is discarded)", len(s))
	}
}

func TestParseEmptyBlockProducesNoEntry(t *testing.T) {
	src := "@0\n@1\nNOP\n"
	s, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, ok := s[0]; ok {
		t.Fatalf("node 0 should have no program; got %v", s[0])
	}
	if len(s[1]) != 1 {
		t.Fatalf("node 1 = %v, want one instruction", s[1])
	}
}

func TestParseCollectsErrorsPerNode(t *testing.T) {
	src := "@0\nBOGUS\n@1\nMOV ACC\n"
	_, err := Parse(src)
	errs, ok := err.(Errors)
	if !ok || len(errs) != 2 {
		t.Fatalf("err = %v, want Errors with 2 entries", err)
	}
	if _, ok := errs[0]; !ok {
		t.Fatalf("expected an error for node 0")
	}
	if _, ok := errs[1]; !ok {
		t.Fatalf("expected an error for node 1")
	}
}

func TestParseMalformedHeaderDiscardsBlock(t *testing.T) {
	src := "@abc\nNOP\n@2\nNOP\n"
	s, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(s) != 1 || len(s[2]) != 1 {
		t.Fatalf("save = %v, want only node 2", s)
	}
}
