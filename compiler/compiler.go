// Package compiler lowers a resolved ast.Program into bytecode.Program,
// folding constant subexpressions, back-patching jump targets, and
// rewriting a tail-position call into a bytecode.OpTailCall so the VM can
// run it without growing its activation stack (spec.md §5).
package compiler

import (
	"github.com/racaem/sylph/ast"
	"github.com/racaem/sylph/bytecode"
	"github.com/racaem/sylph/value"
)

// Compiler lowers an ast.Program into a bytecode.Program.
type Compiler struct {
	cache *bytecode.FunctionCache
}

// New returns a Compiler with a fresh function cache.
func New() *Compiler {
	return &Compiler{cache: bytecode.NewFunctionCache()}
}

// Compile lowers prog in full: every FuncDef becomes a bytecode.CompiledFunction,
// and every remaining top-level statement becomes the program's TopLevel
// instruction sequence, executed in source order as an implicit main.
func (c *Compiler) Compile(prog *ast.Program) (*bytecode.Program, error) {
	out := bytecode.NewProgram()

	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FuncDef)
		if !ok {
			continue
		}
		body, err := c.compileStmts(fn.Body)
		if err != nil {
			return nil, err
		}
		compiled := &bytecode.CompiledFunction{Name: fn.Name, Params: fn.Params, Body: body}
		out.Functions[fn.Name] = c.cache.Intern(compiled)
	}

	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.FuncDef); ok {
			continue
		}
		instrs, err := c.compileStmt(stmt)
		if err != nil {
			return nil, err
		}
		out.TopLevel = append(out.TopLevel, instrs...)
	}

	return out, nil
}

func (c *Compiler) compileStmts(stmts []ast.Stmt) ([]bytecode.Instruction, error) {
	var out []bytecode.Instruction
	for _, stmt := range stmts {
		instrs, err := c.compileStmt(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func (c *Compiler) compileStmt(stmt ast.Stmt) ([]bytecode.Instruction, error) {
	switch st := stmt.(type) {
	case *ast.Assign:
		exprInstrs, err := c.compileExpr(st.Expr)
		if err != nil {
			return nil, err
		}
		return append(exprInstrs, bytecode.Instruction{Op: bytecode.OpStoreVar, Var: st.Name}), nil

	case *ast.If:
		return c.compileIf(st)

	case *ast.While:
		return c.compileWhile(st)

	case *ast.Return:
		if call, ok := st.Expr.(*ast.Call); ok {
			return c.compileTailCall(call)
		}
		exprInstrs, err := c.compileExpr(st.Expr)
		if err != nil {
			return nil, err
		}
		return append(exprInstrs, bytecode.Instruction{Op: bytecode.OpReturn}), nil

	case *ast.Out:
		exprInstrs, err := c.compileExpr(st.Expr)
		if err != nil {
			return nil, err
		}
		return append(exprInstrs, bytecode.Instruction{Op: bytecode.OpOut}), nil

	case *ast.FuncDef:
		// Nested function definitions are not part of the language; the
		// top-level Compile pass handles every FuncDef directly.
		return nil, nil

	default:
		return nil, nil
	}
}

// compileIf lowers the condition, then a JumpIfFalse, then the body. The
// body is compiled first so the JumpIfFalse's Offset is simply its length,
// landing on the first instruction after the body (spec.md §4.3).
func (c *Compiler) compileIf(st *ast.If) ([]bytecode.Instruction, error) {
	condInstrs, err := c.compileExpr(st.Cond)
	if err != nil {
		return nil, err
	}
	bodyInstrs, err := c.compileStmts(st.Body)
	if err != nil {
		return nil, err
	}

	out := append([]bytecode.Instruction{}, condInstrs...)
	out = append(out, bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Offset: len(bodyInstrs)})
	out = append(out, bodyInstrs...)
	return out, nil
}

// compileWhile lowers condition, a placeholder JumpIfFalse, the body (every
// statement kind, fixing the original's loop-body statement-kind omission),
// and a back-edge Jump to the condition. Both jump offsets are computed
// relative to pc+1, matching the VM's post-increment program counter.
func (c *Compiler) compileWhile(st *ast.While) ([]bytecode.Instruction, error) {
	condInstrs, err := c.compileExpr(st.Cond)
	if err != nil {
		return nil, err
	}
	bodyInstrs, err := c.compileStmts(st.Body)
	if err != nil {
		return nil, err
	}

	// Layout: [cond...] [JumpIfFalse] [body...] [Jump back to cond]. By the
	// time the back-edge Jump executes, pc has already advanced past it
	// (fetch-then-increment), so landing back on the condition's first
	// instruction (local index 0) needs offset -(len(condInstrs)+len(bodyInstrs)+2):
	// the whole cond+JumpIfFalse+body span, plus one more for the Jump itself.
	backEdgeOffset := -(len(condInstrs) + len(bodyInstrs) + 2)

	var out []bytecode.Instruction
	out = append(out, condInstrs...)
	out = append(out, bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Offset: len(bodyInstrs) + 1})
	out = append(out, bodyInstrs...)
	out = append(out, bytecode.Instruction{Op: bytecode.OpJump, Offset: backEdgeOffset})
	return out, nil
}

// compileTailCall lowers a return-position call into OpTailCall: the
// caller's activation is reused rather than pushing a new one (spec.md §5).
func (c *Compiler) compileTailCall(call *ast.Call) ([]bytecode.Instruction, error) {
	var out []bytecode.Instruction
	for _, arg := range call.Args {
		argInstrs, err := c.compileExpr(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, argInstrs...)
	}
	out = append(out, bytecode.Instruction{Op: bytecode.OpTailCall, Func: call.Name, Argc: len(call.Args)})
	return out, nil
}

// compileExpr lowers expr post-order, attempting constant folding first:
// a subtree made entirely of literals and arithmetic/comparison operators
// collapses to a single LoadConst instead of its full operator sequence.
func (c *Compiler) compileExpr(expr ast.Expr) ([]bytecode.Instruction, error) {
	if v, ok := foldConst(expr); ok {
		return []bytecode.Instruction{{Op: bytecode.OpLoadConst, Const: v}}, nil
	}

	switch e := expr.(type) {
	case *ast.Number:
		return []bytecode.Instruction{{Op: bytecode.OpLoadConst, Const: e.Value}}, nil

	case *ast.TypedNumber:
		return []bytecode.Instruction{{Op: bytecode.OpLoadConst, Const: e.Value}}, nil

	case *ast.Ident:
		return []bytecode.Instruction{{Op: bytecode.OpLoadVar, Var: e.Name}}, nil

	case *ast.Binary:
		left, err := c.compileExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.compileExpr(e.Right)
		if err != nil {
			return nil, err
		}
		out := append([]bytecode.Instruction{}, left...)
		out = append(out, right...)
		out = append(out, bytecode.Instruction{Op: binOpToOp(e.Op)})
		return out, nil

	case *ast.Call:
		var out []bytecode.Instruction
		for _, arg := range e.Args {
			argInstrs, err := c.compileExpr(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, argInstrs...)
		}
		out = append(out, bytecode.Instruction{Op: bytecode.OpCall, Func: e.Name, Argc: len(e.Args)})
		return out, nil

	default:
		return nil, nil
	}
}

func binOpToOp(op ast.BinOp) bytecode.Op {
	switch op {
	case ast.OpAdd:
		return bytecode.OpAdd
	case ast.OpSub:
		return bytecode.OpSub
	case ast.OpMul:
		return bytecode.OpMul
	case ast.OpMod:
		return bytecode.OpMod
	case ast.OpLe:
		return bytecode.OpLe
	case ast.OpLt:
		return bytecode.OpLt
	case ast.OpGt:
		return bytecode.OpGt
	case ast.OpGe:
		return bytecode.OpGe
	case ast.OpEq:
		return bytecode.OpEq
	default:
		return bytecode.OpAdd
	}
}

// foldConst recursively evaluates expr if it is built entirely from
// literals and binary operators. It declines to fold (ok=false) on any
// arithmetic error, deferring to the VM so overflow/division errors are
// reported the same way whether or not their operands were constant.
func foldConst(expr ast.Expr) (value.IntegerValue, bool) {
	switch e := expr.(type) {
	case *ast.Number:
		return e.Value, true
	case *ast.TypedNumber:
		return e.Value, true
	case *ast.Binary:
		left, ok := foldConst(e.Left)
		if !ok {
			return value.IntegerValue{}, false
		}
		right, ok := foldConst(e.Right)
		if !ok {
			return value.IntegerValue{}, false
		}
		return foldBinOp(e.Op, left, right)
	default:
		return value.IntegerValue{}, false
	}
}

func foldBinOp(op ast.BinOp, l, r value.IntegerValue) (value.IntegerValue, bool) {
	switch op {
	case ast.OpAdd:
		v, err := value.Add(l, r)
		return v, err == nil
	case ast.OpSub:
		v, err := value.Sub(l, r)
		return v, err == nil
	case ast.OpMul:
		v, err := value.Mul(l, r)
		return v, err == nil
	case ast.OpMod:
		v, err := value.Mod(l, r)
		return v, err == nil
	case ast.OpLe:
		return boolResult(value.Compare(l, r) <= 0), true
	case ast.OpLt:
		return boolResult(value.Compare(l, r) < 0), true
	case ast.OpGt:
		return boolResult(value.Compare(l, r) > 0), true
	case ast.OpGe:
		return boolResult(value.Compare(l, r) >= 0), true
	case ast.OpEq:
		return boolResult(value.Compare(l, r) == 0), true
	default:
		return value.IntegerValue{}, false
	}
}

func boolResult(b bool) value.IntegerValue {
	if b {
		return value.FromInt64(value.I64, 1)
	}
	return value.FromInt64(value.I64, 0)
}
