package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI drives a Debugger from stdin, one command per line, until the
// user types quit/q/exit or stdin closes.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(sylph-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI drives a Debugger through its tcell/tview front end.
func RunTUI(dbg *Debugger) error {
	return NewTUI(dbg).Run()
}
