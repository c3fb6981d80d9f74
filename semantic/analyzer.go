// Package semantic resolves names across a parsed SYL program: it checks
// that every function is defined once and that every identifier and call
// target, wherever it is used, refers to something already in scope
// (spec.md §4.4).
package semantic

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/racaem/sylph/ast"
)

// Analyzer performs two-pass name resolution over an ast.Program.
type Analyzer struct {
	functions map[string]*ast.FuncDef
	errs      []error
	mu        sync.Mutex
}

// New creates an Analyzer ready to run Analyze.
func New() *Analyzer {
	return &Analyzer{functions: make(map[string]*ast.FuncDef)}
}

// Analyze runs pass one (function registration) then pass two (name
// resolution) over prog. Function bodies are independent of each other and
// are resolved concurrently; top-level statements are resolved sequentially
// since later statements may depend on variables assigned by earlier ones.
func (a *Analyzer) Analyze(prog *ast.Program) error {
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FuncDef); ok {
			if _, dup := a.functions[fn.Name]; dup {
				a.addErr(fmt.Errorf("Function already defined: %s", fn.Name))
				continue
			}
			a.functions[fn.Name] = fn
		}
	}
	if len(a.errs) > 0 {
		return a.combinedErr()
	}

	var wg sync.WaitGroup
	for _, fn := range a.functions {
		wg.Add(1)
		go func(fn *ast.FuncDef) {
			defer wg.Done()
			scope := newScope(fn.Params)
			cache := make(map[uint64]bool)
			for _, stmt := range fn.Body {
				a.resolveStmt(stmt, scope, cache)
			}
		}(fn)
	}
	wg.Wait()

	topScope := newScope(nil)
	topCache := make(map[uint64]bool)
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.FuncDef); ok {
			continue
		}
		a.resolveStmt(stmt, topScope, topCache)
	}

	if len(a.errs) > 0 {
		return a.combinedErr()
	}
	return nil
}

func (a *Analyzer) addErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

func (a *Analyzer) combinedErr() error {
	msg := ""
	for _, e := range a.errs {
		msg += e.Error() + "\n"
	}
	return fmt.Errorf("%s", msg)
}

// scope tracks the variable names known so far within one function body or
// the top-level statement sequence. It only grows: a name once declared
// stays declared for the remainder of the scope (spec.md has no block
// scoping), which is what makes the structural-hash cache below sound.
type scope struct {
	vars map[string]bool
}

func newScope(params []string) *scope {
	s := &scope{vars: make(map[string]bool)}
	for _, p := range params {
		s.vars[p] = true
	}
	return s
}

func (s *scope) declare(name string) { s.vars[name] = true }
func (s *scope) has(name string) bool { return s.vars[name] }

func (a *Analyzer) resolveStmt(stmt ast.Stmt, s *scope, cache map[uint64]bool) {
	switch st := stmt.(type) {
	case *ast.Assign:
		a.resolveExpr(st.Expr, s, cache)
		s.declare(st.Name)
	case *ast.If:
		a.resolveExpr(st.Cond, s, cache)
		for _, inner := range st.Body {
			a.resolveStmt(inner, s, cache)
		}
	case *ast.While:
		a.resolveExpr(st.Cond, s, cache)
		for _, inner := range st.Body {
			a.resolveStmt(inner, s, cache)
		}
	case *ast.Return:
		a.resolveExpr(st.Expr, s, cache)
	case *ast.Out:
		a.resolveExpr(st.Expr, s, cache)
	case *ast.FuncDef:
		// nested defs are not part of the language; nothing to resolve here.
	}
}

// resolveExpr walks expr looking for undefined identifiers and call
// targets. Structurally identical expressions, once found fully valid (or
// already reported invalid), are not re-walked: since scope.vars only
// grows, a verdict reached earlier in the same scope still holds later.
func (a *Analyzer) resolveExpr(expr ast.Expr, s *scope, cache map[uint64]bool) bool {
	if expr == nil {
		return true
	}
	h := structHash(expr)
	if valid, seen := cache[h]; seen {
		return valid
	}

	valid := true
	switch e := expr.(type) {
	case *ast.Number, *ast.TypedNumber:
		// literals are always valid.
	case *ast.Ident:
		if !s.has(e.Name) {
			a.addErr(fmt.Errorf("Undefined variable or function: %s", e.Name))
			valid = false
		}
	case *ast.Binary:
		if !a.resolveExpr(e.Left, s, cache) {
			valid = false
		}
		if !a.resolveExpr(e.Right, s, cache) {
			valid = false
		}
	case *ast.Call:
		if _, ok := a.functions[e.Name]; !ok {
			a.addErr(fmt.Errorf("Undefined variable or function: %s", e.Name))
			valid = false
		}
		for _, arg := range e.Args {
			if !a.resolveExpr(arg, s, cache) {
				valid = false
			}
		}
	}

	cache[h] = valid
	return valid
}

// structHash produces an FNV hash over expr's shape: node kind, operator,
// names and literal text. It ignores scope, which is why the cache above
// must be reset per scope rather than shared globally.
func structHash(expr ast.Expr) uint64 {
	h := fnv.New64a()
	writeExprHash(h, expr)
	return h.Sum64()
}

func writeExprHash(h interface{ Write([]byte) (int, error) }, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Number:
		h.Write([]byte("num:"))
		h.Write([]byte(e.Value.String()))
	case *ast.TypedNumber:
		h.Write([]byte("typed:"))
		h.Write([]byte(e.Value.Kind().String()))
		h.Write([]byte(e.Value.String()))
	case *ast.Ident:
		h.Write([]byte("id:"))
		h.Write([]byte(e.Name))
	case *ast.Binary:
		h.Write([]byte("bin:"))
		h.Write([]byte(e.Op.String()))
		writeExprHash(h, e.Left)
		writeExprHash(h, e.Right)
	case *ast.Call:
		h.Write([]byte("call:"))
		h.Write([]byte(e.Name))
		for _, arg := range e.Args {
			writeExprHash(h, arg)
		}
	}
}
