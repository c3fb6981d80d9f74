// Package vm executes a compiled bytecode.Program. Each activation is an
// explicit Frame, but there is no separate frame stack: an ordinary Call
// recurses into execFrame on the Go call stack, while a TailCall rewrites
// the current frame in place and loops, so a self-tail-recursive SYL
// function runs in bounded host stack space no matter how many iterations
// it performs (spec.md §5).
package vm

import (
	"fmt"

	"github.com/racaem/sylph/bytecode"
	"github.com/racaem/sylph/value"
)

const numRegisters = 8

// Frame is one activation record: its own operand stack, variable
// bindings, and scratch register bank.
type Frame struct {
	code  []bytecode.Instruction
	pc    int
	stack []value.IntegerValue
	vars  map[string]value.IntegerValue
	regs  [numRegisters]*value.IntegerValue
}

func newFrame(code []bytecode.Instruction, params []string, args []value.IntegerValue) *Frame {
	vars := make(map[string]value.IntegerValue, len(params))
	for i, p := range params {
		if i < len(args) {
			vars[p] = args[i]
		} else {
			vars[p] = value.Zero()
		}
	}
	return &Frame{code: code, vars: vars}
}

func (f *Frame) push(v value.IntegerValue) {
	f.stack = append(f.stack, v)
}

// pop returns the I64 zero on an empty stack rather than failing, matching
// the VM's general fault tolerance toward malformed bytecode (spec.md §5).
func (f *Frame) pop() value.IntegerValue {
	if len(f.stack) == 0 {
		return value.Zero()
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

// VM runs a single bytecode.Program.
type VM struct {
	program  *bytecode.Program
	output   []string
	maxSteps int // 0 means unbounded
	steps    int
}

// New returns a VM ready to run program. maxSteps bounds total instructions
// executed across every frame (0 disables the bound); it exists to give the
// CLI's -max-steps flag and the debugger's step limit somewhere to land.
func New(program *bytecode.Program, maxSteps int) *VM {
	return &VM{program: program, maxSteps: maxSteps}
}

// Output returns every value printed by an Out instruction, in order, each
// rendered through IntegerValue.String().
func (vm *VM) Output() []string {
	return vm.output
}

// Run executes the program's top-level statements to completion.
func (vm *VM) Run() ([]string, error) {
	top := newFrame(vm.program.TopLevel, nil, nil)
	if _, err := vm.execFrame(top); err != nil {
		return vm.output, err
	}
	return vm.output, nil
}

// execFrame runs f until it falls off the end of its code or hits an
// explicit Return, returning the value left for the caller. OpCall
// recurses into execFrame for the callee's own frame; OpTailCall instead
// replaces f's code/pc/vars/stack in place and continues this same loop.
func (vm *VM) execFrame(f *Frame) (value.IntegerValue, error) {
	for {
		done, result, err := vm.step(f)
		if err != nil {
			return value.Zero(), err
		}
		if done {
			return result, nil
		}
	}
}

// step executes exactly one instruction of f. done is true when f has
// either fallen off the end of its code or hit OpReturn, in which case
// result is the value the frame leaves for its caller. Package debugger
// drives this directly to single-step the top-level frame.
func (vm *VM) step(f *Frame) (done bool, result value.IntegerValue, err error) {
	if f.pc >= len(f.code) {
		return true, f.pop(), nil
	}

	if err := vm.countStep(); err != nil {
		return true, value.Zero(), err
	}

	instr := f.code[f.pc]
	f.pc++

	switch instr.Op {
	case bytecode.OpLoadConst:
		f.push(instr.Const)

	case bytecode.OpLoadVar:
		v, ok := f.vars[instr.Var]
		if !ok {
			v = value.Zero()
		}
		f.push(v)

	case bytecode.OpStoreVar:
		f.vars[instr.Var] = f.pop()

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpMod:
		r, err := vm.binArith(instr.Op, f)
		if err != nil {
			return true, value.Zero(), err
		}
		f.push(r)

	case bytecode.OpLe, bytecode.OpLt, bytecode.OpGt, bytecode.OpGe, bytecode.OpEq:
		f.push(vm.compare(instr.Op, f))

	case bytecode.OpJump:
		f.pc += instr.Offset

	case bytecode.OpJumpIfFalse:
		if f.pop().IsZero() {
			f.pc += instr.Offset
		}

	case bytecode.OpCall:
		r, err := vm.call(instr, f)
		if err != nil {
			return true, value.Zero(), err
		}
		f.push(r)

	case bytecode.OpTailCall:
		if err := vm.tailCall(instr, f); err != nil {
			return true, value.Zero(), err
		}

	case bytecode.OpReturn:
		return true, f.pop(), nil

	case bytecode.OpOut:
		v := f.pop()
		vm.output = append(vm.output, v.String())

	case bytecode.OpLoadReg, bytecode.OpStoreReg, bytecode.OpAddReg, bytecode.OpSubReg, bytecode.OpMulReg:
		vm.execRegister(instr, f)

	default:
		return true, value.Zero(), fmt.Errorf("unknown opcode %s", instr.Op)
	}

	return false, value.IntegerValue{}, nil
}

// NewTopFrame returns a fresh activation for the program's top-level
// statements, for a caller (the debugger) that wants to drive execution
// one instruction at a time via Step instead of calling Run.
func (vm *VM) NewTopFrame() *Frame {
	return newFrame(vm.program.TopLevel, nil, nil)
}

// Step executes exactly one instruction of f and reports whether the
// frame has finished (fallen off its code or returned).
func (vm *VM) Step(f *Frame) (done bool, result value.IntegerValue, err error) {
	return vm.step(f)
}

// PC reports f's current program counter.
func (f *Frame) PC() int { return f.pc }

// Code returns f's instruction sequence, for disassembly listings.
func (f *Frame) Code() []bytecode.Instruction { return f.code }

// Vars returns a copy of f's variable bindings.
func (f *Frame) Vars() map[string]value.IntegerValue {
	out := make(map[string]value.IntegerValue, len(f.vars))
	for k, v := range f.vars {
		out[k] = v
	}
	return out
}

// Stack returns a copy of f's operand stack, bottom first.
func (f *Frame) Stack() []value.IntegerValue {
	out := make([]value.IntegerValue, len(f.stack))
	copy(out, f.stack)
	return out
}

func (vm *VM) countStep() error {
	vm.steps++
	if vm.maxSteps > 0 && vm.steps > vm.maxSteps {
		return fmt.Errorf("step limit of %d exceeded", vm.maxSteps)
	}
	return nil
}

func (vm *VM) binArith(op bytecode.Op, f *Frame) (value.IntegerValue, error) {
	b := f.pop()
	a := f.pop()
	switch op {
	case bytecode.OpAdd:
		return value.Add(a, b)
	case bytecode.OpSub:
		return value.Sub(a, b)
	case bytecode.OpMul:
		return value.Mul(a, b)
	case bytecode.OpMod:
		return value.Mod(a, b)
	default:
		return value.Zero(), fmt.Errorf("not an arithmetic opcode: %s", op)
	}
}

func (vm *VM) compare(op bytecode.Op, f *Frame) value.IntegerValue {
	b := f.pop()
	a := f.pop()
	cmp := value.Compare(a, b)
	var truth bool
	switch op {
	case bytecode.OpLe:
		truth = cmp <= 0
	case bytecode.OpLt:
		truth = cmp < 0
	case bytecode.OpGt:
		truth = cmp > 0
	case bytecode.OpGe:
		truth = cmp >= 0
	case bytecode.OpEq:
		truth = cmp == 0
	}
	if truth {
		return value.FromInt64(value.I64, 1)
	}
	return value.FromInt64(value.I64, 0)
}

// popArgs pops argc values and returns them in call order (the first
// pushed argument first), since they were pushed left to right and popped
// last-to-first.
func popArgs(f *Frame, argc int) []value.IntegerValue {
	args := make([]value.IntegerValue, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	return args
}

func (vm *VM) call(instr bytecode.Instruction, f *Frame) (value.IntegerValue, error) {
	fn, ok := vm.program.Functions[instr.Func]
	if !ok {
		return value.Zero(), fmt.Errorf("Function not found: %s", instr.Func)
	}
	args := popArgs(f, instr.Argc)
	callee := newFrame(fn.Body, fn.Params, args)
	return vm.execFrame(callee)
}

// tailCall rewrites f's code, pc, vars and stack to start the callee from
// scratch in place, so a chain of tail calls never deepens the Go call
// stack behind execFrame.
func (vm *VM) tailCall(instr bytecode.Instruction, f *Frame) error {
	fn, ok := vm.program.Functions[instr.Func]
	if !ok {
		return fmt.Errorf("Function not found: %s", instr.Func)
	}
	args := popArgs(f, instr.Argc)
	next := newFrame(fn.Body, fn.Params, args)
	f.code = next.code
	f.pc = 0
	f.vars = next.vars
	f.stack = f.stack[:0]
	return nil
}

// execRegister decodes the scratch register-bank instructions. The
// compiler never emits these (spec.md §9); the VM still honors them so a
// future bytecode producer can use the register bank without a VM change.
// Arithmetic failures here fall back to zero rather than aborting, since
// this path exists only for a hypothetical producer, not SYL programs.
func (vm *VM) execRegister(instr bytecode.Instruction, f *Frame) {
	if instr.Reg < 0 || instr.Reg >= numRegisters {
		return
	}
	switch instr.Op {
	case bytecode.OpLoadReg:
		v, ok := f.vars[instr.Var]
		if !ok {
			v = value.Zero()
		}
		f.regs[instr.Reg] = &v
		f.push(v)
	case bytecode.OpStoreReg:
		if f.regs[instr.Reg] != nil {
			f.vars[instr.Var] = *f.regs[instr.Reg]
		}
	case bytecode.OpAddReg, bytecode.OpSubReg, bytecode.OpMulReg:
		// Reg names the first operand register; the second is read from
		// the operand stack so the instruction stays two-address.
		other := f.pop()
		if f.regs[instr.Reg] == nil {
			f.push(value.Zero())
			return
		}
		a := *f.regs[instr.Reg]
		var result value.IntegerValue
		var err error
		switch instr.Op {
		case bytecode.OpAddReg:
			result, err = value.Add(a, other)
		case bytecode.OpSubReg:
			result, err = value.Sub(a, other)
		case bytecode.OpMulReg:
			result, err = value.Mul(a, other)
		}
		if err != nil {
			result = value.Zero()
		}
		f.regs[instr.Reg] = &result
		f.push(result)
	}
}
