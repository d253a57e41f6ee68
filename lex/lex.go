// Package lex turns raw assembly source lines into label-and-token records,
// stripping comments and whitespace and truncating oversized input the way
// the physical TIS-100 terminal does.
package lex

import "strings"

// MaxChars is the number of characters of a source line the lexer will
// look at; anything past this is never read, matching the terminal's
// per-line character limit.
const MaxChars = 18

// MaxInstructions caps the number of instruction-bearing lines the lexer
// will tokenize; once reached, every further line is still scanned for a
// label (labels may legitimately sit past the last reachable instruction)
// but its tokens are discarded.
const MaxInstructions = 15

// Label names a line's optional label together with the instruction index
// it resolves to — the index of the next instruction to be emitted, which
// is why a label on a blank line and a label on the following instruction
// line both resolve to the same index.
type Label struct {
	Name  string
	Index int
}

// Line is one lexed source line: its source line number, an optional
// label, and the whitespace/comment-stripped tokens that make up an
// instruction (empty if the line held only a label or nothing at all).
type Line struct {
	Number int
	Label  *Label
	Tokens []string
}

// Program lexes every line of src; a final newline ends the last line
// rather than starting an extra empty one. next tracks the instruction index a
// label on a given line would resolve to; it only advances on lines that
// produced at least one token. Once next reaches MaxInstructions, later
// lines keep their labels (a trailing label resolves to MaxInstructions,
// one past the last instruction) but their tokens are dropped, since the
// node could never reach one more instruction anyway.
func Program(src string) []Line {
	rawLines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")

	lines := make([]Line, 0, len(rawLines))
	next := 0
	for i, raw := range rawLines {
		labelName, tokens := line(raw)

		var label *Label
		if labelName != "" {
			label = &Label{Name: labelName, Index: next}
		}
		if next >= MaxInstructions {
			tokens = nil
		} else if len(tokens) > 0 {
			next++
		}

		lines = append(lines, Line{Number: i, Label: label, Tokens: tokens})
	}
	return lines
}

// line lexes a single source line into an optional label and its tokens.
// Only the first MaxChars runes of the uppercased line are considered.
// Whitespace (space or comma) separates tokens; '#' starts a comment that
// runs to the end of the considered prefix; ':' ends a label, but only the
// first one seen — once a label has been captured, any further ':' is
// just a token character.
func line(raw string) (string, []string) {
	upper := strings.ToUpper(raw)
	runes := []rune(upper)
	if len(runes) > MaxChars {
		runes = runes[:MaxChars]
	}

	var label string
	haveLabel := false
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, c := range runes {
		switch {
		case c == '#':
			flush()
			return label, tokens
		case c == ' ' || c == ',':
			flush()
		case !haveLabel && c == ':':
			label = word.String()
			haveLabel = true
			word.Reset()
		default:
			word.WriteRune(c)
		}
	}
	flush()
	return label, tokens
}
