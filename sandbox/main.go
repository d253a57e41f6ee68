// Command sandbox runs an interactive TIS-100 sandbox: no judges, just a
// console wired into the grid's input and output pseudo-nodes. It reads
// decimal integers from stdin, one per line, feeds them into the grid, and
// prints every value the grid emits.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tis-100/emu/grid"
	"github.com/tis-100/emu/save"
)

const usage = "TIS-100 Sandbox Emulator\n\nUsage:\n    sandbox <save.txt>"

func main() {
	flag.Usage = func() { fmt.Println(usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println(usage)
		return
	}

	sv, err := save.Load(args[0])
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

	inputs := make(chan int)
	outputs := make(chan int)
	done := make(chan struct{})

	go runGrid(sv, inputs, outputs, done)
	go printOutputs(outputs)

	readConsole(os.Stdin, inputs)
	close(done)
}

// runGrid drives the sandbox's cycle loop, feeding queued console input and
// forwarding any value the grid emits.
func runGrid(sv save.Save, inputs <-chan int, outputs chan<- int, done <-chan struct{}) {
	sb := grid.NewSandbox(sv)
	defer close(outputs)

	for {
		select {
		case val := <-inputs:
			sb.WriteConsole(val)
		case <-done:
			return
		default:
		}

		sb.Step()

		if val, ok := sb.ReadConsole(); ok {
			outputs <- val
		}

		time.Sleep(time.Millisecond)
	}
}

func printOutputs(outputs <-chan int) {
	for val := range outputs {
		fmt.Printf("> %d\n", val)
	}
}

// readConsole reads one decimal integer per line from r and forwards valid
// ones to inputs; malformed lines are silently skipped.
func readConsole(r *os.File, inputs chan<- int) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		val, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		inputs <- val
	}
}
