package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pellmont/gridwar/internal/gamelog"
	"github.com/pellmont/gridwar/internal/replay"
	"github.com/pellmont/gridwar/pkg/gridwar"
)

// The simulator counts positions from the empty board at index 0. The viewer
// hides that position: turn t lives at simulator index t+1.
func main() {
	file := flag.String("file", "", "game log file to replay")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file gamelogs/game_<ts>.json")
		os.Exit(2)
	}

	doc, err := gamelog.Load(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sim, err := replay.New(doc)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if sim.Len() > 1 {
		if err := sim.StepForward(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	maxTurn := sim.Len() - 2

	printHeader(*file, doc, maxTurn)
	render(sim, doc, maxTurn)

	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		cmd := ""
		if len(fields) > 0 {
			cmd = fields[0]
		}

		var cmdErr error
		switch cmd {
		case "n", "":
			cmdErr = sim.StepForward()
		case "b":
			if sim.Index() <= 1 {
				cmdErr = fmt.Errorf("already at the initial state")
			} else {
				cmdErr = sim.StepBack()
			}
		case "j":
			if len(fields) < 2 {
				cmdErr = fmt.Errorf("usage: j <turn>")
				break
			}
			turn, err := strconv.Atoi(fields[1])
			if err != nil || turn < 0 || turn > maxTurn {
				cmdErr = fmt.Errorf("turn must be within [0, %d]", maxTurn)
				break
			}
			cmdErr = sim.JumpTo(turn + 1)
		case "q":
			return
		case "h", "help":
			printCommands()
			fmt.Print("> ")
			continue
		default:
			cmdErr = fmt.Errorf("unknown command %q", cmd)
		}

		if cmdErr != nil {
			fmt.Println(cmdErr)
		} else {
			render(sim, doc, maxTurn)
		}
		fmt.Print("> ")
	}
}

func printHeader(path string, doc *gamelog.GameLog, maxTurn int) {
	p1 := doc.Players[string(gridwar.Player1)]
	p2 := doc.Players[string(gridwar.Player2)]
	fmt.Printf("%s: %s (A) vs %s (B), %d turns, %s\n", path, p1, p2, maxTurn, verdict(doc))
	printCommands()
}

func printCommands() {
	fmt.Println("commands: n = next turn, b = back, j <turn> = jump, q = quit")
}

func render(sim *replay.Simulator, doc *gamelog.GameLog, maxTurn int) {
	fmt.Println()
	fmt.Print(gridwar.RenderState(sim.State(), sim.Layout()))
	line := fmt.Sprintf("turn %d/%d  units %d", sim.Index()-1, maxTurn, len(sim.State().Units))
	if sim.Index()-1 == maxTurn {
		line += "  " + verdict(doc)
	}
	fmt.Println(line)
}

func verdict(doc *gamelog.GameLog) string {
	if doc.Winner == nil {
		return "draw"
	}
	return *doc.Winner + " wins"
}
