package semantic_test

import (
	"testing"

	"github.com/racaem/sylph/parser"
	"github.com/racaem/sylph/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) error {
	t.Helper()
	p := parser.NewParser(src, "test.syl")
	prog, err := p.Parse()
	require.NoError(t, err)
	return semantic.New().Analyze(prog)
}

func TestAnalyze_UndefinedVariable(t *testing.T) {
	err := analyze(t, "out y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable or function: y")
}

func TestAnalyze_DefinedVariableOK(t *testing.T) {
	err := analyze(t, "x = 1\nout x")
	assert.NoError(t, err)
}

func TestAnalyze_DuplicateFunction(t *testing.T) {
	err := analyze(t, "def f\nreturn 1\nend\ndef f\nreturn 2\nend")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Function already defined: f")
}

func TestAnalyze_CallToUndefinedFunction(t *testing.T) {
	err := analyze(t, "out missing 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable or function: missing")
}

func TestAnalyze_FunctionParamsInScope(t *testing.T) {
	err := analyze(t, "def add a, b\nreturn a + b\nend\nout add 1 2")
	assert.NoError(t, err)
}

func TestAnalyze_VariableUsedBeforeAssignment(t *testing.T) {
	err := analyze(t, "out x\nx = 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable or function: x")
}

func TestAnalyze_WhileBodyAssignmentVisibleAfterLoop(t *testing.T) {
	err := analyze(t, "x = 0\nwhile x < 10\ny = x\nx += 1\nend\nout y")
	assert.NoError(t, err)
}
