// Package bytecode defines SYL's instruction set and the compiled program
// shape produced by package compiler and executed by package vm.
package bytecode

import (
	"fmt"

	"github.com/racaem/sylph/value"
)

// Op identifies an instruction's operation.
type Op int

const (
	OpLoadConst Op = iota
	OpLoadVar
	OpStoreVar
	OpAdd
	OpSub
	OpMul
	OpMod
	OpLe
	OpLt
	OpGt
	OpGe
	OpEq
	OpJump
	OpJumpIfFalse
	OpCall
	OpTailCall
	OpReturn
	OpOut

	// Register-bank instructions. The compiler never emits these; they are
	// decoded by the VM as a reserved extension point for a future producer
	// (spec.md §9, Open Question 1).
	OpLoadReg
	OpStoreReg
	OpAddReg
	OpSubReg
	OpMulReg
)

var opNames = map[Op]string{
	OpLoadConst:   "LOAD_CONST",
	OpLoadVar:     "LOAD_VAR",
	OpStoreVar:    "STORE_VAR",
	OpAdd:         "ADD",
	OpSub:         "SUB",
	OpMul:         "MUL",
	OpMod:         "MOD",
	OpLe:          "LE",
	OpLt:          "LT",
	OpGt:          "GT",
	OpGe:          "GE",
	OpEq:          "EQ",
	OpJump:        "JUMP",
	OpJumpIfFalse: "JUMP_IF_FALSE",
	OpCall:        "CALL",
	OpTailCall:    "TAIL_CALL",
	OpReturn:      "RETURN",
	OpOut:         "OUT",
	OpLoadReg:     "LOAD_REG",
	OpStoreReg:    "STORE_REG",
	OpAddReg:      "ADD_REG",
	OpSubReg:      "SUB_REG",
	OpMulReg:      "MUL_REG",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Instruction is a single bytecode instruction. Not every field is used by
// every Op; see the comment on each Op's emitting site in package compiler.
type Instruction struct {
	Op     Op
	Const  value.IntegerValue // LoadConst
	Var    string             // LoadVar, StoreVar
	Offset int                // Jump, JumpIfFalse: relative to pc+1
	Func   string             // Call, TailCall
	Argc   int                // Call, TailCall
	Reg    int                // LoadReg, StoreReg, AddReg, SubReg, MulReg
}

func (i Instruction) String() string {
	switch i.Op {
	case OpLoadConst:
		return fmt.Sprintf("%s %s", i.Op, i.Const)
	case OpLoadVar, OpStoreVar:
		return fmt.Sprintf("%s %s", i.Op, i.Var)
	case OpJump, OpJumpIfFalse:
		return fmt.Sprintf("%s %+d", i.Op, i.Offset)
	case OpCall, OpTailCall:
		return fmt.Sprintf("%s %s/%d", i.Op, i.Func, i.Argc)
	case OpLoadReg, OpStoreReg, OpAddReg, OpSubReg, OpMulReg:
		return fmt.Sprintf("%s r%d", i.Op, i.Reg)
	default:
		return i.Op.String()
	}
}
