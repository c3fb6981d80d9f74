package parser

import (
	"fmt"

	"github.com/racaem/sylph/ast"
	"github.com/racaem/sylph/value"
)

// Parser turns a token stream into an ast.Program. It runs a pre-scan over
// all "def NAME" occurrences before the main descent so that a bare
// identifier used as a primary expression can be told apart from a zero- or
// multi-argument call to a known function (spec.md §4.3/§4.4).
type Parser struct {
	lexer     *Lexer
	tokens    []Token
	pos       int
	current   Token
	peek      Token
	errors    *ErrorList
	functions map[string]bool
	filename  string
}

// NewParser tokenizes input in full and pre-scans function definitions.
func NewParser(input, filename string) *Parser {
	lexer := NewLexer(input, filename)
	tokens, lexErrs := lexer.Tokenize()

	p := &Parser{
		lexer:     lexer,
		tokens:    tokens,
		pos:       0,
		errors:    &ErrorList{},
		functions: make(map[string]bool),
		filename:  filename,
	}
	for _, err := range lexErrs.Errors {
		p.errors.AddError(err)
	}

	p.prescanFunctions()

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the warnings and errors accumulated across lexing and
// parsing, including statement-level recoveries inside parseBody.
func (p *Parser) Errors() *ErrorList {
	return p.errors
}

// prescanFunctions records every name following a "def" keyword, so the main
// pass can distinguish a call from a bare variable reference (spec.md §4.3).
func (p *Parser) prescanFunctions() {
	for i := 0; i < len(p.tokens)-1; i++ {
		if p.tokens[i].Type == TokenDef && p.tokens[i+1].Type == TokenIdentifier {
			p.functions[p.tokens[i+1].Literal] = true
		}
	}
}

func (p *Parser) nextToken() {
	p.current = p.peek
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
		p.pos++
	} else {
		p.peek = Token{Type: TokenEOF, Pos: p.current.Pos}
	}
}

func (p *Parser) errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return NewError(p.current.Pos, kind, fmt.Sprintf(format, args...))
}

// Parse parses the full token stream into a Program. A top-level parse
// error aborts immediately and is returned via the ErrorList.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.current.Type != TokenEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			if perr, ok := err.(*Error); ok {
				p.errors.AddError(perr)
			} else {
				p.errors.AddError(NewError(p.current.Pos, ErrorSyntax, err.Error()))
			}
			return nil, p.errors
		}
		prog.Statements = append(prog.Statements, stmt)
	}

	if p.errors.HasErrors() {
		return nil, p.errors
	}
	return prog, nil
}

// parseBody parses statements up to (and consuming) a terminating "end"
// keyword. Errors inside a body are recovered locally: a warning is
// recorded and the parser advances one token before retrying, so one bad
// statement does not abort the whole function/if/while (spec.md §4.4).
func (p *Parser) parseBody() ([]ast.Stmt, error) {
	var body []ast.Stmt
	for p.current.Type != TokenEnd {
		if p.current.Type == TokenEOF {
			return nil, p.errorf(ErrorUnterminatedBlock, "Expected 'end', got EOF")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			if perr, ok := err.(*Error); ok {
				p.errors.AddWarning(&Warning{Pos: perr.Pos, Message: perr.Message})
			} else {
				p.errors.AddWarning(&Warning{Pos: p.current.Pos, Message: err.Error()})
			}
			p.nextToken()
			continue
		}
		body = append(body, stmt)
	}
	p.nextToken() // consume 'end'
	return body, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.current.Type {
	case TokenDef:
		return p.parseFuncDef()
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenReturn:
		return p.parseReturn()
	case TokenOut:
		return p.parseOut()
	case TokenIdentifier:
		if isAssignOp(p.peek.Type) {
			return p.parseAssign()
		}
		fallthrough
	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Out{Expr: expr}, nil
	}
}

func isAssignOp(t TokenType) bool {
	switch t {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign, TokenMulAssign, TokenModAssign:
		return true
	default:
		return false
	}
}

func (p *Parser) parseFuncDef() (ast.Stmt, error) {
	p.nextToken() // consume 'def'
	if p.current.Type != TokenIdentifier {
		return nil, p.errorf(ErrorUnexpectedToken, "Expected function name, got %s", p.current.Type)
	}
	name := p.current.Literal
	p.nextToken()

	// Parameter list: whitespace-separated with no parens, but a comma
	// before the next name is what distinguishes "another parameter" from
	// the start of the body (spec.md §4.3: "<param>(, <param>)*").
	var params []string
	if p.current.Type == TokenIdentifier {
		params = append(params, p.current.Literal)
		p.nextToken()
		for p.current.Type == TokenComma {
			p.nextToken()
			if p.current.Type != TokenIdentifier {
				return nil, p.errorf(ErrorUnexpectedToken, "Expected parameter name, got %s", p.current.Type)
			}
			params = append(params, p.current.Literal)
			p.nextToken()
		}
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.nextToken() // consume 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.nextToken() // consume 'while'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	p.nextToken() // consume 'return'
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Expr: expr}, nil
}

func (p *Parser) parseOut() (ast.Stmt, error) {
	p.nextToken() // consume 'out'
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Out{Expr: expr}, nil
}

// parseAssign handles both plain assignment and the four compound forms,
// desugaring "name += expr" to "name = name + expr" (spec.md §4.3).
func (p *Parser) parseAssign() (ast.Stmt, error) {
	name := p.current.Literal
	opTok := p.peek.Type
	p.nextToken() // consume identifier
	p.nextToken() // consume assignment operator

	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	switch opTok {
	case TokenAssign:
		return &ast.Assign{Name: name, Expr: rhs}, nil
	case TokenPlusAssign:
		return &ast.Assign{Name: name, Expr: &ast.Binary{Left: &ast.Ident{Name: name}, Op: ast.OpAdd, Right: rhs}}, nil
	case TokenMinusAssign:
		return &ast.Assign{Name: name, Expr: &ast.Binary{Left: &ast.Ident{Name: name}, Op: ast.OpSub, Right: rhs}}, nil
	case TokenMulAssign:
		return &ast.Assign{Name: name, Expr: &ast.Binary{Left: &ast.Ident{Name: name}, Op: ast.OpMul, Right: rhs}}, nil
	case TokenModAssign:
		return &ast.Assign{Name: name, Expr: &ast.Binary{Left: &ast.Ident{Name: name}, Op: ast.OpMod, Right: rhs}}, nil
	default:
		return nil, p.errorf(ErrorUnexpectedToken, "Unexpected assignment operator %s", opTok)
	}
}

// Expression grammar, lowest to highest precedence (spec.md §4.3):
//
//	equality   := relational (('==') relational)*
//	relational := additive (('<'|'<='|'>'|'>=') additive)*
//	additive   := multiplicative (('+'|'-') multiplicative)*
//	multiplicative := primary (('*'|'%') primary)*
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseEquality()
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TokenEq {
		p.nextToken()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: ast.OpEq, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.current.Type {
		case TokenLt:
			op = ast.OpLt
		case TokenLe:
			op = ast.OpLe
		case TokenGt:
			op = ast.OpGt
		case TokenGe:
			op = ast.OpGe
		default:
			return left, nil
		}
		p.nextToken()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.current.Type {
		case TokenPlus:
			op = ast.OpAdd
		case TokenMinus:
			op = ast.OpSub
		default:
			return left, nil
		}
		p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.current.Type {
		case TokenMul:
			op = ast.OpMul
		case TokenMod:
			op = ast.OpMod
		default:
			return left, nil
		}
		p.nextToken()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.current.Type {
	case TokenNumber:
		v, err := value.SmallestFit(p.current.Literal)
		if err != nil {
			return nil, p.errorf(ErrorSyntax, "Invalid numeric literal: %s", p.current.Literal)
		}
		p.nextToken()
		return &ast.Number{Value: v}, nil
	case TokenTyped:
		kind, ok := kindFromSuffix(p.current.Suffix)
		if !ok {
			return nil, p.errorf(ErrorSyntax, "Unknown width suffix: %s", p.current.Suffix)
		}
		v, err := value.FromString(p.current.Literal, kind)
		if err != nil {
			return nil, p.errorf(ErrorSyntax, "%s", err)
		}
		p.nextToken()
		return &ast.TypedNumber{Value: v}, nil
	case TokenMinus:
		// Unary minus is not first-class: "- expr" lowers to "0 - expr"
		// wherever a primary is expected (spec.md §4.3).
		p.nextToken()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Left: &ast.Number{Value: value.Zero()}, Op: ast.OpSub, Right: operand}, nil
	case TokenIdentifier:
		name := p.current.Literal
		p.nextToken()
		if p.functions[name] {
			return p.parseCallArgs(name)
		}
		return &ast.Ident{Name: name}, nil
	default:
		return nil, p.errorf(ErrorUnexpectedToken, "Unexpected token %s in expression", p.current.Type)
	}
}

// argStartsHere reports whether the current token can begin another
// juxtaposed call argument: an identifier, a number, or a minus (spec.md
// §4.3). An identifier only counts if it isn't about to be assigned to —
// the second disambiguator, which stops "b = mo" followed by "c = 5" from
// swallowing "c" as an argument of "mo".
func (p *Parser) argStartsHere() bool {
	switch p.current.Type {
	case TokenNumber, TokenTyped, TokenMinus:
		return true
	case TokenIdentifier:
		return p.peek.Type != TokenAssign
	default:
		return false
	}
}

// parseCallArgs greedily consumes juxtaposed argument terms following a name
// already known (from the pre-scan) to be a function — "f x y" is a call to
// f with two arguments, with no parentheses or commas at the call site
// (spec.md §4.3). Each argument is parsed at primary precedence, so a known
// function reached as an argument (e.g. "f g x") recurses and consumes its
// own arguments first.
func (p *Parser) parseCallArgs(name string) (ast.Expr, error) {
	var args []ast.Expr
	for p.argStartsHere() {
		arg, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &ast.Call{Name: name, Args: args}, nil
}

func kindFromSuffix(suffix string) (value.Kind, bool) {
	switch suffix {
	case "i8":
		return value.I8, true
	case "i16":
		return value.I16, true
	case "i32":
		return value.I32, true
	case "i64":
		return value.I64, true
	case "i128":
		return value.I128, true
	case "bigint":
		return value.BigInt, true
	default:
		return 0, false
	}
}
