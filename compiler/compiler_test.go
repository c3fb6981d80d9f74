package compiler_test

import (
	"testing"

	"github.com/racaem/sylph/bytecode"
	"github.com/racaem/sylph/compiler"
	"github.com/racaem/sylph/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	p := parser.NewParser(src, "test.syl")
	prog, err := p.Parse()
	require.NoError(t, err)
	out, err := compiler.New().Compile(prog)
	require.NoError(t, err)
	return out
}

func TestCompile_ConstantFoldingProducesSingleLoadConst(t *testing.T) {
	out := compile(t, "out 1 + 2 * 3")
	require.Len(t, out.TopLevel, 2) // LoadConst(7), Out
	assert.Equal(t, bytecode.OpLoadConst, out.TopLevel[0].Op)
	assert.Equal(t, "7", out.TopLevel[0].Const.String())
	assert.Equal(t, bytecode.OpOut, out.TopLevel[1].Op)
}

func TestCompile_NonConstantBinaryEmitsOperator(t *testing.T) {
	out := compile(t, "x = 1\nout x + 2")
	// x=1: LoadConst,StoreVar ; out x+2: LoadVar,LoadConst,Add,Out
	require.Len(t, out.TopLevel, 6)
	assert.Equal(t, bytecode.OpAdd, out.TopLevel[4].Op)
}

func TestCompile_IfJumpSkipsBody(t *testing.T) {
	out := compile(t, "x = 1\nif x == 0\nout x\nend")
	// find the JumpIfFalse instruction and confirm it lands right after the body
	var jmpIdx, jmpOffset int = -1, 0
	for i, instr := range out.TopLevel {
		if instr.Op == bytecode.OpJumpIfFalse {
			jmpIdx = i
			jmpOffset = instr.Offset
		}
	}
	require.NotEqual(t, -1, jmpIdx)
	target := jmpIdx + 1 + jmpOffset
	assert.Equal(t, len(out.TopLevel), target)
}

func TestCompile_WhileBackEdgeReturnsToCondition(t *testing.T) {
	out := compile(t, "x = 0\nwhile x < 3\nx += 1\nend")
	var condStart = -1
	for i, instr := range out.TopLevel {
		if instr.Op == bytecode.OpLoadVar && instr.Var == "x" && i > 1 {
			condStart = i
			break
		}
	}
	require.NotEqual(t, -1, condStart)

	var jumpIdx = -1
	for i := len(out.TopLevel) - 1; i >= 0; i-- {
		if out.TopLevel[i].Op == bytecode.OpJump {
			jumpIdx = i
			break
		}
	}
	require.NotEqual(t, -1, jumpIdx)
	target := jumpIdx + 1 + out.TopLevel[jumpIdx].Offset
	assert.Equal(t, condStart, target)
}

func TestCompile_WhileBodyCompilesAllStatementKinds(t *testing.T) {
	out := compile(t, "def noop\nreturn 0\nend\nx = 0\nwhile x < 3\nif x == 1\nout x\nend\nx += 1\nend")
	jumps := 0
	for _, instr := range out.TopLevel {
		if instr.Op == bytecode.OpJumpIfFalse {
			jumps++
		}
	}
	assert.Equal(t, 2, jumps, "nested if inside while body should compile, not be skipped")
}

func TestCompile_ReturnOfCallEmitsTailCall(t *testing.T) {
	out := compile(t, "def f n\nreturn f n\nend")
	fn := out.Functions["f"]
	require.NotNil(t, fn)
	last := fn.Body[len(fn.Body)-1]
	assert.Equal(t, bytecode.OpTailCall, last.Op)
	assert.Equal(t, "f", last.Func)
}

func TestCompile_ReturnOfNonCallEmitsReturn(t *testing.T) {
	out := compile(t, "def f n\nreturn n + 1\nend")
	fn := out.Functions["f"]
	require.NotNil(t, fn)
	last := fn.Body[len(fn.Body)-1]
	assert.Equal(t, bytecode.OpReturn, last.Op)
}

func TestCompile_ModuloByZeroIsNotFoldedAtCompileTime(t *testing.T) {
	// The language has no division operator; '%' by zero is the fold
	// failure exercised here. It must fall back to runtime instructions
	// rather than aborting compilation.
	out := compile(t, "out 5 % 0")
	ops := make([]bytecode.Op, len(out.TopLevel))
	for i, instr := range out.TopLevel {
		ops[i] = instr.Op
	}
	assert.Contains(t, ops, bytecode.OpMod)
}
