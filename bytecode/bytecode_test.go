package bytecode_test

import (
	"testing"

	"github.com/racaem/sylph/bytecode"
	"github.com/racaem/sylph/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpString_KnownAndUnknown(t *testing.T) {
	assert.Equal(t, "ADD", bytecode.OpAdd.String())
	assert.Equal(t, "TAIL_CALL", bytecode.OpTailCall.String())
	assert.Contains(t, bytecode.Op(999).String(), "Op(999)")
}

func TestInstructionString_FormatsByOp(t *testing.T) {
	one, err := value.FromString("1", value.I32)
	require.NoError(t, err)

	load := bytecode.Instruction{Op: bytecode.OpLoadConst, Const: one}
	assert.Equal(t, "LOAD_CONST 1", load.String())

	store := bytecode.Instruction{Op: bytecode.OpStoreVar, Var: "x"}
	assert.Equal(t, "STORE_VAR x", store.String())

	jump := bytecode.Instruction{Op: bytecode.OpJump, Offset: 3}
	assert.Equal(t, "JUMP +3", jump.String())

	call := bytecode.Instruction{Op: bytecode.OpCall, Func: "f", Argc: 2}
	assert.Equal(t, "CALL f/2", call.String())

	reg := bytecode.Instruction{Op: bytecode.OpAddReg, Reg: 1}
	assert.Equal(t, "ADD_REG r1", reg.String())

	ret := bytecode.Instruction{Op: bytecode.OpReturn}
	assert.Equal(t, "RETURN", ret.String())
}

func TestNewProgram_StartsWithEmptyFunctionTable(t *testing.T) {
	p := bytecode.NewProgram()
	assert.NotNil(t, p.Functions)
	assert.Empty(t, p.Functions)
	assert.Empty(t, p.TopLevel)
}

func body(ops ...bytecode.Op) []bytecode.Instruction {
	out := make([]bytecode.Instruction, len(ops))
	for i, op := range ops {
		out[i] = bytecode.Instruction{Op: op}
	}
	return out
}

func TestFunctionCache_InternSameShapeReturnsCanonical(t *testing.T) {
	cache := bytecode.NewFunctionCache()

	a := &bytecode.CompiledFunction{Name: "f", Params: []string{"x"}, Body: body(bytecode.OpLoadVar, bytecode.OpReturn)}
	b := &bytecode.CompiledFunction{Name: "f", Params: []string{"x"}, Body: body(bytecode.OpLoadVar, bytecode.OpReturn)}

	got := cache.Intern(a)
	assert.Same(t, a, got)

	got2 := cache.Intern(b)
	assert.Same(t, a, got2, "a second function with identical name/params/body should resolve to the first interned instance")
}

func TestFunctionCache_InternSameNameDifferentHashOverwrites(t *testing.T) {
	cache := bytecode.NewFunctionCache()

	v1 := &bytecode.CompiledFunction{Name: "f", Body: body(bytecode.OpReturn)}
	got1 := cache.Intern(v1)
	assert.Same(t, v1, got1)

	v2 := &bytecode.CompiledFunction{Name: "f", Body: body(bytecode.OpLoadVar, bytecode.OpReturn)}
	got2 := cache.Intern(v2)
	assert.Same(t, v2, got2, "a changed body under the same name must invalidate the cached entry, not be shadowed by it")

	// The now-stale v1 shape must not resurrect the old entry.
	v3 := &bytecode.CompiledFunction{Name: "f", Body: body(bytecode.OpReturn)}
	got3 := cache.Intern(v3)
	assert.Same(t, v3, got3)
}

func TestFunctionCache_InternDifferentShapeKeepsBoth(t *testing.T) {
	cache := bytecode.NewFunctionCache()

	a := &bytecode.CompiledFunction{Name: "f", Params: []string{"x"}, Body: body(bytecode.OpReturn)}
	b := &bytecode.CompiledFunction{Name: "g", Params: []string{"x"}, Body: body(bytecode.OpReturn)}

	gotA := cache.Intern(a)
	gotB := cache.Intern(b)
	assert.Same(t, a, gotA)
	assert.Same(t, b, gotB)
}

func TestFunctionCache_InternSetsInlineHint(t *testing.T) {
	cache := bytecode.NewFunctionCache()

	short := &bytecode.CompiledFunction{Name: "short", Body: body(bytecode.OpReturn)}
	cache.Intern(short)
	assert.True(t, short.Inline)

	ops := make([]bytecode.Op, bytecode.InlineThreshold+1)
	for i := range ops {
		ops[i] = bytecode.OpReturn
	}
	long := &bytecode.CompiledFunction{Name: "long", Body: body(ops...)}
	cache.Intern(long)
	assert.False(t, long.Inline)
}

func TestHashFunction_DeterministicAndSensitiveToShape(t *testing.T) {
	b1 := body(bytecode.OpLoadVar, bytecode.OpReturn)
	b2 := body(bytecode.OpLoadVar, bytecode.OpReturn)

	h1 := bytecode.HashFunction("f", []string{"x"}, b1)
	h2 := bytecode.HashFunction("f", []string{"x"}, b2)
	assert.Equal(t, h1, h2)

	h3 := bytecode.HashFunction("f", []string{"y"}, b1)
	assert.NotEqual(t, h1, h3)
}
