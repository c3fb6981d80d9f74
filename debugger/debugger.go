// Package debugger drives a vm.VM one instruction at a time over the
// program's top-level frame, so a command-line or TUI front end can set
// breakpoints, single-step, and inspect variables between instructions.
//
// Stepping operates only on the top-level frame: an OpCall or OpTailCall
// still executes atomically within a single Step, because vm.VM runs a
// called function's frame to completion internally rather than exposing
// its own pc externally. A breakpoint or single-step therefore always
// lands between top-level instructions, never inside a function body.
package debugger

import (
	"fmt"
	"strings"

	"github.com/racaem/sylph/value"
	"github.com/racaem/sylph/vm"
)

// StepMode selects what ShouldBreak treats as a pause condition.
type StepMode int

const (
	StepNone   StepMode = iota // run until a breakpoint or halt
	StepSingle                 // pause after exactly one instruction
)

// Debugger holds one debugging session over a single vm.VM.
type Debugger struct {
	VM          *vm.VM
	Frame       *vm.Frame
	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running  bool
	Done     bool
	StepMode StepMode

	LastCommand string
	Output      strings.Builder
}

// NewDebugger wraps machine for interactive stepping.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
		StepMode:    StepNone,
	}
}

// ExecuteCommand parses and runs a single command line, repeating
// LastCommand when cmdLine is blank (so pressing enter at the prompt
// repeats the previous step/continue, as in gdb).
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "next", "n":
		return d.cmdStep(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before running the
// instruction currently at the frame's pc, and a one-line reason why.
func (d *Debugger) ShouldBreak() (bool, string) {
	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	pc := d.Frame.PC()
	if bp := d.Breakpoints.At(pc); bp != nil && bp.Enabled {
		hit := d.Breakpoints.Hit(pc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}
	return false, ""
}

// GetOutput returns and clears the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf writes formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// variable reads a single binding out of the current frame, defaulting
// to zero for a name that was never assigned (matching the VM's own
// tolerant OpLoadVar behavior).
func (d *Debugger) variable(name string) value.IntegerValue {
	vars := d.Frame.Vars()
	if v, ok := vars[name]; ok {
		return v
	}
	return value.Zero()
}
