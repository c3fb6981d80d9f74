package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// maxContinueSteps bounds a single "continue"/"run" command so a runaway
// program (or one with no breakpoints at all) returns control to the
// prompt instead of hanging the debugger session forever. The VM's own
// -max-steps budget (vm.New's maxSteps) is the authoritative limit; this
// is just a much larger backstop so a missing breakpoint doesn't make the
// debugger itself appear to freeze.
const maxContinueSteps = 50_000_000

// cmdRun starts (or restarts) execution at the top of the program.
func (d *Debugger) cmdRun(args []string) error {
	d.Frame = d.VM.NewTopFrame()
	d.Running = true
	d.Done = false
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return d.Advance(maxContinueSteps)
}

// cmdContinue resumes a paused program until the next breakpoint or halt.
func (d *Debugger) cmdContinue(args []string) error {
	if d.Frame == nil || d.Done {
		return fmt.Errorf("program is not running")
	}
	d.StepMode = StepNone
	d.Println("Continuing...")
	return d.Advance(maxContinueSteps)
}

// cmdStep executes exactly one top-level instruction.
func (d *Debugger) cmdStep(args []string) error {
	if d.Frame == nil || d.Done {
		return fmt.Errorf("program is not running")
	}
	d.StepMode = StepSingle
	return d.Advance(maxContinueSteps)
}

// Advance drives the frame forward, pausing at the first breakpoint,
// single-step boundary, halt, or runtime error, executing at most limit
// instructions in between.
func (d *Debugger) Advance(limit int) error {
	for i := 0; limit <= 0 || i < limit; i++ {
		done, _, err := d.VM.Step(d.Frame)
		if err != nil {
			d.Running = false
			d.Done = true
			return err
		}
		if done {
			d.Running = false
			d.Done = true
			d.Printf("Program finished. Output: %s\n", strings.Join(d.VM.Output(), ", "))
			return nil
		}
		if pause, reason := d.ShouldBreak(); pause {
			d.Running = false
			d.Printf("Paused: %s (pc=%d)\n", reason, d.Frame.PC())
			return nil
		}
	}
	d.Printf("Paused after %d instructions (instruction limit)\n", limit)
	return nil
}

// cmdBreak sets a breakpoint at a top-level instruction index.
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <instruction-index>")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid instruction index: %s", args[0])
	}
	bp := d.Breakpoints.Add(idx, false)
	d.Printf("Breakpoint %d at instruction %d\n", bp.ID, idx)
	return nil
}

// cmdTBreak sets a breakpoint that deletes itself after its first hit.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <instruction-index>")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid instruction index: %s", args[0])
	}
	bp := d.Breakpoints.Add(idx, true)
	d.Printf("Temporary breakpoint %d at instruction %d\n", bp.ID, idx)
	return nil
}

// cmdDelete removes one breakpoint, or every breakpoint if no ID is given.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.Delete(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.Enable(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.Disable(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdPrint reports a variable's current value in the running frame.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <variable>")
	}
	if d.Frame == nil {
		return fmt.Errorf("program is not running")
	}
	v := d.variable(args[0])
	d.Printf("%s = %s\n", args[0], v.String())
	return nil
}

// cmdBacktrace prints the single active frame. The VM runs called
// functions to completion via host recursion rather than exposing their
// intermediate frames, so there is never more than one frame to show
// from outside; that asymmetry is called out here rather than silently
// printing a one-deep "stack" that looks complete.
func (d *Debugger) cmdBacktrace(args []string) error {
	if d.Frame == nil {
		return fmt.Errorf("program is not running")
	}
	d.Printf("#0  top-level, pc=%d\n", d.Frame.PC())
	d.Println("(function calls run to completion internally; their frames are not inspectable)")
	return nil
}

// cmdList disassembles a window of the top-level instruction stream
// around the current pc.
func (d *Debugger) cmdList(args []string) error {
	if d.Frame == nil {
		return fmt.Errorf("program is not running")
	}
	code := d.Frame.Code()
	pc := d.Frame.PC()

	start := pc - 5
	if start < 0 {
		start = 0
	}
	end := pc + 5
	if end > len(code) {
		end = len(code)
	}

	for i := start; i < end; i++ {
		marker := "  "
		if i == pc {
			marker = "->"
		}
		if bp := d.Breakpoints.At(i); bp != nil {
			marker = "* "
		}
		d.Printf("%s %4d: %s\n", marker, i, code[i].String())
	}
	return nil
}

// cmdInfo displays breakpoints or the current variable bindings.
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <breakpoints|vars|stack>")
	}
	switch strings.ToLower(args[0]) {
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "vars", "variables":
		return d.showVars()
	case "stack":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showBreakpoints() error {
	bps := d.Breakpoints.All()
	if len(bps) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: instruction %d (%s, hits: %d)\n", bp.ID, bp.Index, status, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showVars() error {
	if d.Frame == nil {
		return fmt.Errorf("program is not running")
	}
	vars := d.Frame.Vars()
	if len(vars) == 0 {
		d.Println("No variables assigned yet")
		return nil
	}
	for name, v := range vars {
		d.Printf("  %s = %s\n", name, v.String())
	}
	return nil
}

func (d *Debugger) showStack() error {
	if d.Frame == nil {
		return fmt.Errorf("program is not running")
	}
	stack := d.Frame.Stack()
	if len(stack) == 0 {
		d.Println("Operand stack is empty")
		return nil
	}
	for i := len(stack) - 1; i >= 0; i-- {
		d.Printf("  [%d] %s\n", i, stack[i].String())
	}
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println("Commands:")
	d.Println("  run/r                start (or restart) execution")
	d.Println("  continue/c           resume until the next breakpoint or halt")
	d.Println("  step/s, next/n       execute one top-level instruction")
	d.Println("  break/b <idx>        set a breakpoint at an instruction index")
	d.Println("  tbreak/tb <idx>      set a one-shot breakpoint")
	d.Println("  delete/d [id]        delete one breakpoint, or all if no id")
	d.Println("  enable/disable <id>  toggle a breakpoint")
	d.Println("  print/p <var>        show a variable's current value")
	d.Println("  info breakpoints     list breakpoints")
	d.Println("  info vars            list all variable bindings")
	d.Println("  info stack           show the operand stack")
	d.Println("  backtrace/bt/where   show the active frame")
	d.Println("  list/l               disassemble around the current pc")
	d.Println("  help/h/?             show this text")
	return nil
}
