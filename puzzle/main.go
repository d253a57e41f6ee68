// Command puzzle runs a single TIS-100 puzzle to completion: it loads a
// spec file describing the grid layout and judge streams, assembles a
// save file against it, and drives cycles until a judge reaches a
// verdict or the grid deadlocks.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tis-100/emu/grid"
	"github.com/tis-100/emu/save"
	"github.com/tis-100/emu/specfile"
	"github.com/tis-100/emu/testnode"
)

const usage = "TIS-100 Puzzle Emulator\n\nUsage:\n    puzzle <spec.lua> <save.txt>"

func main() {
	flag.Usage = func() { fmt.Println(usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Println(usage)
		return
	}

	sv, err := save.Load(args[1])
	if err != nil {
		if errs, ok := err.(save.Errors); ok {
			fmt.Println("could not assemble save file")
			for node, e := range errs {
				fmt.Printf("node %d: %v\n", node, e)
			}
			os.Exit(1)
		}
		log.Fatalf("could not load save file: %v", err)
	}

	spec, err := specfile.Load(args[0])
	if err != nil {
		log.Fatalf("could not load spec file: %v", err)
	}

	p := grid.NewPuzzle(spec, sv)
	for {
		p.Step()

		switch p.State() {
		case testnode.PASSED:
			fmt.Println("PASSED")
			fmt.Printf("CYCLES: %d\n", p.Cycles())
			return
		case testnode.FAILED:
			fmt.Println("FAILED")
			fmt.Printf("CYCLES: %d\n", p.Cycles())
			return
		}

		if p.IsDeadlocked() {
			fmt.Println("DEADLOCK")
			return
		}
	}
}
