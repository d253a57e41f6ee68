package grid

import (
	"github.com/tis-100/emu/save"
	"github.com/tis-100/emu/specfile"
	"github.com/tis-100/emu/testnode"
)

// Puzzle drives a Grid against a spec's judge streams until every judge
// has reached a verdict or the grid deadlocks.
type Puzzle struct {
	grid *Grid
}

// NewPuzzle constructs a Puzzle from a loaded spec and the save file
// assembled against it.
func NewPuzzle(spec *specfile.Spec, programs save.Save) *Puzzle {
	g := New(spec.Layout, programs)
	for _, stream := range spec.Streams {
		g.AttachStream(stream)
	}
	return &Puzzle{grid: g}
}

// Step drives one full cycle of the underlying grid.
func (p *Puzzle) Step() {
	p.grid.Tick()
}

// Cycles reports how many Step calls have run.
func (p *Puzzle) Cycles() int { return p.grid.Cycles() }

// IsDeadlocked reports whether the grid has stopped making progress.
func (p *Puzzle) IsDeadlocked() bool { return p.grid.IsDeadlocked() }

// State reports Testing if any judge stream is still Testing; else
// Failed if any judge says Failed; else Passed.
func (p *Puzzle) State() testnode.State {
	any := false
	for _, id := range sortedOutputKeys(p.grid.outputs) {
		any = true
		if p.grid.outputs[id].State() == testnode.TESTING {
			return testnode.TESTING
		}
	}
	for _, id := range sortedImageKeys(p.grid.images) {
		any = true
		if p.grid.images[id].State() == testnode.TESTING {
			return testnode.TESTING
		}
	}
	if !any {
		return testnode.PASSED
	}

	for _, id := range sortedOutputKeys(p.grid.outputs) {
		if p.grid.outputs[id].State() == testnode.FAILED {
			return testnode.FAILED
		}
	}
	return testnode.PASSED
}
