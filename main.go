// Command sylph lexes, parses, analyzes, compiles and runs a SYL source
// file, optionally under the line-oriented or tview step debugger.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/racaem/sylph/bytecode"
	"github.com/racaem/sylph/compiler"
	"github.com/racaem/sylph/config"
	"github.com/racaem/sylph/debugger"
	"github.com/racaem/sylph/parser"
	"github.com/racaem/sylph/semantic"
	"github.com/racaem/sylph/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		debugMode   = flag.Bool("debug", false, "Start in line-oriented debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use the tview step debugger")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
		maxSteps    = flag.Uint64("max-steps", 0, "Maximum instructions to execute before aborting (0: use config default)")
		verbose     = flag.Bool("verbose", false, "Print parser warnings to stderr")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("sylph %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: sylph [-debug] [-tui] [-max-steps N] [-config PATH] <source-file>")
		os.Exit(1)
	}
	sourcePath := args[0]

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	steps := cfg.Execution.MaxSteps
	if *maxSteps > 0 {
		steps = *maxSteps
	}

	src, err := os.ReadFile(sourcePath) // #nosec G304 -- user-specified source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", sourcePath, err)
		os.Exit(1)
	}

	bc, warnings, err := build(string(src), sourcePath)
	if warnings != nil && *verbose {
		fmt.Fprint(os.Stderr, warnings.PrintWarnings())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	machine := vm.New(bc, int(steps))

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("sylph debugger - type 'help' for commands")
			fmt.Printf("Program loaded: %s\n", sourcePath)
			fmt.Println()
			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	out, err := machine.Run()
	for _, line := range out {
		fmt.Println(line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

// build runs the lex/parse/analyze/compile pipeline over src, returning
// any parser warnings alongside the first hard error from any stage.
func build(src, filename string) (*bytecode.Program, *parser.ErrorList, error) {
	p := parser.NewParser(src, filename)
	prog, err := p.Parse()
	warnings := p.Errors()
	if err != nil {
		return nil, warnings, fmt.Errorf("parse error: %w", err)
	}

	if err := semantic.New().Analyze(prog); err != nil {
		return nil, warnings, fmt.Errorf("semantic error: %w", err)
	}

	out, err := compiler.New().Compile(prog)
	if err != nil {
		return nil, warnings, fmt.Errorf("compile error: %w", err)
	}

	return out, warnings, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
