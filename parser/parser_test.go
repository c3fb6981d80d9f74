package parser_test

import (
	"testing"

	"github.com/racaem/sylph/ast"
	"github.com/racaem/sylph/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.NewParser(src, "test.syl")
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestLexer_CompoundAssignBeforeSingle(t *testing.T) {
	l := parser.NewLexer("x += 1", "t")
	toks, errs := l.Tokenize()
	require.False(t, errs.HasErrors())
	require.Len(t, toks, 4)
	assert.Equal(t, parser.TokenPlusAssign, toks[1].Type)
}

func TestLexer_TypedLiteralBeforePlain(t *testing.T) {
	l := parser.NewLexer("127i8", "t")
	toks, _ := l.Tokenize()
	require.Len(t, toks, 2)
	assert.Equal(t, parser.TokenTyped, toks[0].Type)
	assert.Equal(t, "127", toks[0].Literal)
	assert.Equal(t, "i8", toks[0].Suffix)
}

func TestLexer_LineComment(t *testing.T) {
	l := parser.NewLexer("x = 1 // trailing note\ny = 2", "t")
	toks, errs := l.Tokenize()
	require.False(t, errs.HasErrors())
	var idents []string
	for _, tok := range toks {
		if tok.Type == parser.TokenIdentifier {
			idents = append(idents, tok.Literal)
		}
	}
	assert.Equal(t, []string{"x", "y"}, idents)
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	l := parser.NewLexer("x = 1 $ 2", "t")
	_, errs := l.Tokenize()
	require.True(t, errs.HasErrors())
	assert.Contains(t, errs.Errors[0].Message, "Unexpected character: '$'")
}

func TestParse_SimpleAssignAndOut(t *testing.T) {
	prog := parseProgram(t, "x = 5\nout x")
	require.Len(t, prog.Statements, 2)

	assign, ok := prog.Statements[0].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)

	out, ok := prog.Statements[1].(*ast.Out)
	require.True(t, ok)
	ident, ok := out.Expr.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "x", ident.Name)
}

func TestParse_BareExpressionIsImplicitOut(t *testing.T) {
	prog := parseProgram(t, "42")
	require.Len(t, prog.Statements, 1)
	_, ok := prog.Statements[0].(*ast.Out)
	assert.True(t, ok)
}

func TestParse_CompoundAssignDesugars(t *testing.T) {
	prog := parseProgram(t, "x = 1\nx += 2")
	assign := prog.Statements[1].(*ast.Assign)
	assert.Equal(t, "x", assign.Name)
	bin, ok := assign.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
	left := bin.Left.(*ast.Ident)
	assert.Equal(t, "x", left.Name)
}

func TestParse_FuncDefAndCall(t *testing.T) {
	prog := parseProgram(t, "def add a, b\nreturn a + b\nend\nadd 1 2")
	fn, ok := prog.Statements[0].(*ast.FuncDef)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.Return)
	require.True(t, ok)
	_, isBinary := ret.Expr.(*ast.Binary)
	assert.True(t, isBinary)

	out := prog.Statements[1].(*ast.Out)
	call, ok := out.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "add", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestParse_JuxtaposedCallIsNotArithmeticOnSubsequentIdents(t *testing.T) {
	// spec.md §8: def f n return n + 1 end / out f 4 -> 5
	prog := parseProgram(t, "def f n\nreturn n + 1\nend\nout f 4")
	out := prog.Statements[1].(*ast.Out)
	call, ok := out.Expr.(*ast.Call)
	require.True(t, ok, "a known function juxtaposed with an argument should parse as a Call")
	assert.Equal(t, "f", call.Name)
	require.Len(t, call.Args, 1)
	num, ok := call.Args[0].(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, "4", num.Value.String())
}

func TestParse_UnknownNameIsNeverACall(t *testing.T) {
	prog := parseProgram(t, "x = 1\nout x 2")
	out := prog.Statements[1].(*ast.Out)
	_, ok := out.Expr.(*ast.Ident)
	assert.True(t, ok, "a name never seen after 'def' is a plain reference, even juxtaposed with other tokens")
}

func TestParse_AssignLookaheadStopsArgumentConsumption(t *testing.T) {
	// spec.md §4.3's second disambiguator: "b = mo" then "c = 5" must not
	// parse c as an argument of mo.
	prog := parseProgram(t, "def mo\nreturn 1\nend\nb = mo\nc = 5")
	require.Len(t, prog.Statements, 3)

	assignB := prog.Statements[1].(*ast.Assign)
	assert.Equal(t, "b", assignB.Name)
	call, ok := assignB.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "mo", call.Name)
	assert.Empty(t, call.Args, "c must not be swallowed as mo's argument")

	assignC := prog.Statements[2].(*ast.Assign)
	assert.Equal(t, "c", assignC.Name)
	num, ok := assignC.Expr.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, "5", num.Value.String())
}

func TestParse_NoGroupingParentheses(t *testing.T) {
	// The language has no parenthesis token at all (spec.md §3's Token
	// variant list); a stray '(' is a lex error, not a grouping operator.
	l := parser.NewLexer("(1 + 2)", "t")
	_, errs := l.Tokenize()
	assert.True(t, errs.HasErrors())
}

func TestParse_LeadingMinusAtStatementPosition(t *testing.T) {
	prog := parseProgram(t, "-5")
	out := prog.Statements[0].(*ast.Out)
	bin, ok := out.Expr.(*ast.Binary)
	require.True(t, ok, "a leading '-' desugars to 0 - expr")
	assert.Equal(t, ast.OpSub, bin.Op)
	left := bin.Left.(*ast.Number)
	assert.Equal(t, "0", left.Value.String())
}

func TestParse_IdentNotPrescannedIsReference(t *testing.T) {
	prog := parseProgram(t, "x = 1\nout x")
	out := prog.Statements[1].(*ast.Out)
	_, ok := out.Expr.(*ast.Ident)
	assert.True(t, ok, "unscanned name should parse as a variable reference, not a call")
}

func TestParse_IfAndWhile(t *testing.T) {
	prog := parseProgram(t, "if x == 0\nout x\nend\nwhile x < 10\nx += 1\nend")
	_, ok := prog.Statements[0].(*ast.If)
	assert.True(t, ok)
	_, ok = prog.Statements[1].(*ast.While)
	assert.True(t, ok)
}

func TestParse_PrecedenceClimbing(t *testing.T) {
	prog := parseProgram(t, "out 1 + 2 * 3")
	out := prog.Statements[0].(*ast.Out)
	top, ok := out.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, top.Op)
	_, rhsIsMul := top.Right.(*ast.Binary)
	assert.True(t, rhsIsMul, "multiplication should bind tighter than addition")
}

func TestParse_UnterminatedBlockIsError(t *testing.T) {
	p := parser.NewParser("if x == 0\nout x", "t")
	_, err := p.Parse()
	assert.Error(t, err)
}
