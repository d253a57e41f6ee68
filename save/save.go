// Package save splits a TIS-100 save file — several node programs
// concatenated behind "@N" headers — into one assembled core.Program per
// node, via package asm.
package save

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tis-100/emu/asm"
	"github.com/tis-100/emu/core"
)

// Save maps node index to its assembled program. A node index with no
// entry has no program (an idle node).
type Save map[int]core.Program

// Errors maps node index to the assembly error encountered for that
// node's program.
type Errors map[int]error

// Error implements the error interface for Errors.
func (e Errors) Error() string {
	s := fmt.Sprintf("%d program(s) failed to assemble", len(e))
	for node, err := range e {
		s += fmt.Sprintf("\n\t@%d: %v", node, err)
	}
	return s
}

// Load reads filename and splits+assembles it into a Save.
func Load(filename string) (Save, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse splits src on "@N" headers and assembles each node's program
// block. A malformed header (non-numeric or missing index) silently
// discards that block, mirroring a save file with no active @ section.
func Parse(src string) (Save, error) {
	save := make(Save)
	errs := make(Errors)

	node := -1
	var block strings.Builder

	flush := func() {
		if node < 0 {
			return
		}
		text := block.String()
		block.Reset()
		if strings.TrimSpace(text) == "" {
			return
		}
		prog, err := asm.Parse(text)
		if err != nil {
			errs[node] = err
			return
		}
		save[node] = prog
	}

	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(line, "@") {
			flush()
			node = parseHeader(line)
			continue
		}
		if node >= 0 {
			block.WriteString(line)
			block.WriteByte('\n')
		}
	}
	flush()

	if len(errs) > 0 {
		return nil, errs
	}
	return save, nil
}

// parseHeader extracts the leading run of digits after '@'; returns -1 if
// there is none, which discards the following block (no node to attach it
// to).
func parseHeader(line string) int {
	digits := strings.Builder{}
	for _, c := range line[1:] {
		if c < '0' || c > '9' {
			break
		}
		digits.WriteRune(c)
	}
	if digits.Len() == 0 {
		return -1
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return -1
	}
	return n
}
